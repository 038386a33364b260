// Package ops classifies resgen's subcommands for grouped help output.
package ops

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
)

// CommandGroup is the help section a command is listed under
type CommandGroup string

const (
	GroupResources CommandGroup = "resources" // resources, platforms
	GroupManifest  CommandGroup = "manifest"  // manifest show/validate
	GroupSupport   CommandGroup = "support"   // version
)

var groupTitles = map[CommandGroup]string{
	GroupResources: "Resource Commands",
	GroupManifest:  "Manifest Commands",
	GroupSupport:   "Support Commands",
}

// Groups lists command groups in help order.
func Groups() []CommandGroup {
	return []CommandGroup{GroupResources, GroupManifest, GroupSupport}
}

// Title returns the help heading for group.
func (g CommandGroup) Title() string {
	if title, ok := groupTitles[g]; ok {
		return title
	}
	return string(g)
}

// CommandRegistration is a registered command with its classification
type CommandRegistration struct {
	Name        string
	Group       CommandGroup
	Command     *cobra.Command
	Description string
}

// Registry manages command classifications and registrations
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*CommandRegistration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*CommandRegistration)}
}

var globalRegistry = NewRegistry()

// GetRegistry returns the process-wide command registry
func GetRegistry() *Registry {
	return globalRegistry
}

// RegisterCommand registers cmd under group in the global registry
func RegisterCommand(group CommandGroup, cmd *cobra.Command) error {
	return globalRegistry.Register(group, cmd)
}

// Register adds cmd to the registry. The name is the first word of
// cmd.Use and the description is cmd.Short.
func (r *Registry) Register(group CommandGroup, cmd *cobra.Command) error {
	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}
	if _, ok := groupTitles[group]; !ok {
		return fmt.Errorf("unknown command group %q", group)
	}
	name := cmd.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	r.commands[name] = &CommandRegistration{
		Name:        name,
		Group:       group,
		Command:     cmd,
		Description: cmd.Short,
	}
	return nil
}

// GetCommand returns a registered command by name
func (r *Registry) GetCommand(name string) (*CommandRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// GetCommandsByGroup returns the commands in group sorted by name
func (r *Registry) GetCommandsByGroup(group CommandGroup) []*CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*CommandRegistration
	for _, reg := range r.commands {
		if reg.Group == group {
			result = append(result, reg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
