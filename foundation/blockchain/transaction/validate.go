package transaction

import "github.com/go-playground/validator/v10"

// validate holds the settings and caches for validating asset payload shapes.
var validate = validator.New()
