package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate runs the struct's validator tags and returns one message per
// failed field.
func Validate(req interface{}) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	for _, fe := range errs {
		out = append(out, fe.Field()+" failed on "+fe.Tag())
	}
	return out
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
