package http

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// rawSpec returns the embedded OpenAPI document.
func rawSpec() []byte {
	return openAPISpec
}

var loadSwagger = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI spec: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	return loadSwagger()
}

// ValidateSpec parses and validates the embedded document. Servers call it at startup.
func ValidateSpec() error {
	doc, err := GetSwagger()
	if err != nil {
		return err
	}
	loader := openapi3.NewLoader()
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return nil
}
