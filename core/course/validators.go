package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mwalimu/core"
)

var (
	uniqueIDsTag  = "uniqueids"
	uniqueIDsText = "topic ids must be unique"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(contentStructValidation, Content{})
	core.RegisterCustomTranslation(validate, translator, uniqueIDsTag, uniqueIDsText)
}

// contentStructValidation reports duplicated topic ids.
func contentStructValidation(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(Content)
	if !ok {
		return
	}
	seen := make(map[int]struct{}, len(c.Topics))
	for _, t := range c.Topics {
		if _, dup := seen[t.ID]; dup {
			sl.ReportError(c.Topics, "topics", "Topics", uniqueIDsTag, "")
			return
		}
		seen[t.ID] = struct{}{}
	}
}
