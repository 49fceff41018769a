package model

import (
	"net/url"
	"strings"
)

// EndpointKind selects which trigger endpoint a plan calls.
type EndpointKind int

const (
	EndpointBuild EndpointKind = iota
	EndpointBuildWithParameters
)

func (k EndpointKind) String() string {
	if k == EndpointBuild {
		return "build"
	}
	return "buildWithParameters"
}

// TriggerPlan describes exactly one trigger call.
type TriggerPlan struct {
	Job  string
	Kind EndpointKind
	// Params are encoded in order. Ignored when Raw is set.
	Params []Param
	// Raw is a user-supplied query string passed through verbatim.
	Raw *string
}

// Query returns the query string sent with a BuildWithParameters call.
func (p TriggerPlan) Query() string {
	if p.Raw != nil {
		return *p.Raw
	}
	parts := make([]string, 0, len(p.Params))
	for _, param := range p.Params {
		parts = append(parts, url.QueryEscape(param.Name)+"="+url.QueryEscape(param.Value))
	}
	return strings.Join(parts, "&")
}
