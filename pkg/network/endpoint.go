package network

import "maps"

// Method is an HTTP method supported by endpoints.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Params are query parameters. Order is irrelevant.
type Params map[string]string

// Headers are request headers.
type Headers map[string]string

// Descriptor is the transport-independent description of a REST call.
type Descriptor struct {
	// Name labels the endpoint in metrics and logs. Defaults to Path.
	Name    string
	Path    string
	Method  Method
	Params  Params
	Headers Headers
	Body    []byte
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Params = maps.Clone(d.Params)
	out.Headers = maps.Clone(d.Headers)
	if d.Body != nil {
		out.Body = append([]byte(nil), d.Body...)
	}
	return out
}

func (d Descriptor) label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Path
}

// Endpoint is an immutable descriptor tagged with the type its response
// decodes into. The With* methods return modified copies.
type Endpoint[T any] struct {
	d Descriptor
}

// NewEndpoint creates a GET endpoint for path.
func NewEndpoint[T any](path string) Endpoint[T] {
	return Endpoint[T]{d: Descriptor{Path: path, Method: MethodGet}}
}

// FromDescriptor wraps an existing descriptor.
func FromDescriptor[T any](d Descriptor) Endpoint[T] {
	if d.Method == "" {
		d.Method = MethodGet
	}
	return Endpoint[T]{d: d.clone()}
}

// Descriptor returns a copy of the underlying descriptor.
func (e Endpoint[T]) Descriptor() Descriptor {
	return e.d.clone()
}

// WithName sets the metrics label.
func (e Endpoint[T]) WithName(name string) Endpoint[T] {
	d := e.d.clone()
	d.Name = name
	return Endpoint[T]{d: d}
}

// WithMethod sets the HTTP method.
func (e Endpoint[T]) WithMethod(m Method) Endpoint[T] {
	d := e.d.clone()
	d.Method = m
	return Endpoint[T]{d: d}
}

// WithParam adds one query parameter.
func (e Endpoint[T]) WithParam(key, value string) Endpoint[T] {
	d := e.d.clone()
	if d.Params == nil {
		d.Params = Params{}
	}
	d.Params[key] = value
	return Endpoint[T]{d: d}
}

// WithParams merges params into the query parameters.
func (e Endpoint[T]) WithParams(params Params) Endpoint[T] {
	d := e.d.clone()
	if d.Params == nil {
		d.Params = Params{}
	}
	maps.Copy(d.Params, params)
	return Endpoint[T]{d: d}
}

// WithHeader adds one header.
func (e Endpoint[T]) WithHeader(key, value string) Endpoint[T] {
	d := e.d.clone()
	if d.Headers == nil {
		d.Headers = Headers{}
	}
	d.Headers[key] = value
	return Endpoint[T]{d: d}
}

// WithBody sets the raw request body.
func (e Endpoint[T]) WithBody(body []byte) Endpoint[T] {
	d := e.d.clone()
	d.Body = append([]byte(nil), body...)
	return Endpoint[T]{d: d}
}
