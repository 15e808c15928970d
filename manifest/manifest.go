// Package manifest defines the descriptors consumed by the generators and
// the manifest bundle produced from them.
package manifest

import "github.com/syssam/timescape/schema"

// HTTP verbs understood by the client generator.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

// Handler describes one request handler.
type Handler struct {
	// HandlerID is globally unique.
	HandlerID string `json:"handlerId" yaml:"handlerId"`
	// Path is the route, with ":name" segments for path parameters.
	Path string `json:"path" yaml:"path"`
	// Methods holds one or more HTTP verbs; the first is the primary verb.
	Methods []string `json:"methods" yaml:"methods"`
	// RequestSchema and ResponseSchema name entries of the schema map.
	RequestSchema  string `json:"requestSchema,omitempty" yaml:"requestSchema,omitempty"`
	ResponseSchema string `json:"responseSchema,omitempty" yaml:"responseSchema,omitempty"`
	// Version is the Timescape Version of the handler.
	Version string `json:"version" yaml:"version"`
	// Policy holds access and rate policies.
	Policy Policy `json:"policy" yaml:"policy,omitempty"`
	// Dependencies names the modules the handler depends on.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Policy is the policy metadata of a handler.
type Policy struct {
	Auth      string `json:"auth,omitempty" yaml:"auth,omitempty"`
	RateLimit int    `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	TimeoutMS int    `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// PrimaryMethod returns the first declared verb, or GET.
func (h *Handler) PrimaryMethod() string {
	if len(h.Methods) == 0 {
		return MethodGet
	}
	return h.Methods[0]
}

// Module describes a runtime module that handlers may depend on.
type Module struct {
	// ModuleID is globally unique.
	ModuleID     string   `json:"moduleId" yaml:"moduleId"`
	Runtime      string   `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Network      Network  `json:"network" yaml:"network,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Network is a module's declared network-access policy.
type Network struct {
	// Mode is "none", "allowlist" or "any".
	Mode  string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Hosts []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
}

// Edge types of the version graph.
const (
	EdgeCompatible = "compatible"
	EdgeBreaking   = "breaking"
)

// Bundle is the aggregated, checksum-protected manifest artifact.
// GeneratedAt is an RFC 3339 timestamp and is not covered by Checksum.
type Bundle struct {
	Version      string                  `json:"version" yaml:"version"`
	GeneratedAt  string                  `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
	Handlers     []Handler               `json:"handlers" yaml:"handlers"`
	Modules      []Module                `json:"modules" yaml:"modules"`
	Schemas      map[string]*schema.Node `json:"schemas" yaml:"schemas"`
	VersionGraph VersionGraph            `json:"versionGraph" yaml:"versionGraph"`
	Transformers []TransformerRef        `json:"transformers" yaml:"transformers"`
	Checksum     string                  `json:"checksum" yaml:"checksum"`
	Signature    string                  `json:"signature,omitempty" yaml:"signature,omitempty"`
	Metadata     *Metadata               `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// VersionGraph orders the versions of every resource path.
type VersionGraph struct {
	Nodes []VersionNode `json:"nodes" yaml:"nodes"`
	Edges []VersionEdge `json:"edges" yaml:"edges"`
}

// VersionNode is one (resource path, version) pair.
type VersionNode struct {
	Version      string `json:"version" yaml:"version"`
	ResourcePath string `json:"resourcePath" yaml:"resourcePath"`
	HandlerID    string `json:"handlerId" yaml:"handlerId"`
}

// VersionEdge connects a version to its immediate successor on the same
// resource path.
type VersionEdge struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	EdgeType string `json:"edgeType" yaml:"edgeType"`
}

// TransformerRef records a transformer required by a breaking edge.
type TransformerRef struct {
	FromVersion string `json:"fromVersion" yaml:"fromVersion"`
	ToVersion   string `json:"toVersion" yaml:"toVersion"`
	Path        string `json:"path" yaml:"path"`
}

// Metadata is optional project metadata.
type Metadata struct {
	ProjectName string `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`
}
