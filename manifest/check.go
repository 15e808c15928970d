package manifest

import (
	"slices"
	"strings"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/tsv"
)

var knownMethods = []string{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions,
}

// Check reports the first structural problem of a handler descriptor as a
// *timescape.DescriptorError. Verbs are compared case-insensitively.
func (h *Handler) Check() error {
	if h.HandlerID == "" {
		return timescape.NewDescriptorError("handler", h.Path, "handlerId", "must not be empty", nil)
	}
	if !strings.HasPrefix(h.Path, "/") {
		return timescape.NewDescriptorError("handler", h.HandlerID, "path", "must start with /", nil)
	}
	for _, seg := range strings.Split(h.Path, "/") {
		if seg == ":" {
			return timescape.NewDescriptorError("handler", h.HandlerID, "path", "path parameter without name", nil)
		}
	}
	if len(h.Methods) == 0 {
		return timescape.NewDescriptorError("handler", h.HandlerID, "methods", "at least one verb is required", nil)
	}
	for _, m := range h.Methods {
		if !slices.Contains(knownMethods, strings.ToUpper(m)) {
			return timescape.NewDescriptorError("handler", h.HandlerID, "methods", "unknown verb "+m, nil)
		}
	}
	if _, err := tsv.Parse(h.Version); err != nil {
		return timescape.NewDescriptorError("handler", h.HandlerID, "version", "", err)
	}
	return nil
}

// PathParams returns the ":name" parameters of the handler path in order.
func (h *Handler) PathParams() []string {
	return PathParams(h.Path)
}

// PathParams returns the ":name" parameters of a route in order.
func PathParams(path string) []string {
	var params []string
	for _, seg := range strings.Split(path, "/") {
		if name, ok := strings.CutPrefix(seg, ":"); ok && name != "" {
			params = append(params, name)
		}
	}
	return params
}

// Check reports the first structural problem of a module descriptor.
func (m *Module) Check() error {
	if m.ModuleID == "" {
		return timescape.NewDescriptorError("module", m.Runtime, "moduleId", "must not be empty", nil)
	}
	switch m.Network.Mode {
	case "", "none", "any":
		if len(m.Network.Hosts) > 0 {
			return timescape.NewDescriptorError("module", m.ModuleID, "network.hosts", "hosts require mode allowlist", nil)
		}
	case "allowlist":
	default:
		return timescape.NewDescriptorError("module", m.ModuleID, "network.mode", "unknown mode "+m.Network.Mode, nil)
	}
	return nil
}
