// Package validation provides struct and programmatic validation.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their mapstructure key, which is how configuration sections are addressed.
//
//	type CloudSettings struct {
//	    Endpoint string `mapstructure:"endpoint" validate:"required,httpurl"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("backend", s.Backend, []string{"local", "cloud"}).
//	    Required("enhancement.api_key", s.Enhancement.APIKey)
//	err := v.Validate()
package validation
