package course

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/kepzesmindenkinek/backend/core"
)

func TestCourse_Display(t *testing.T) {
	c := Course{
		Name:        "Excel (haladó)",
		Price:       125000,
		Description: "* Képletek *  * Diagramok*",
	}
	assert.Equal(t, "125,000", c.PriceDisplay())
	assert.Equal(t, []string{"Képletek", "Diagramok"}, c.DescriptionItems())
	assert.Equal(t, []string{"Excel", "haladó)"}, c.NameParts())

	assert.Empty(t, Course{}.DescriptionItems())
	assert.Equal(t, "0", Course{}.PriceDisplay())
}

func TestNewCourse_Validate(t *testing.T) {
	validate := core.NewValidator(core.NewTranslator())

	nc := NewCourse{Name: "  Internet alapok ", Description: "* böngészés", Price: 1000}
	assert.NoError(t, nc.Validate(validate))
	assert.Equal(t, "Internet alapok", nc.Name)
	assert.Equal(t, "internet-alapok", nc.Slug)

	nc = NewCourse{Name: "x", Description: "y", Price: -1}
	err := nc.Validate(validate)
	if assert.Error(t, err) {
		verrs := err.(validator.ValidationErrors)
		assert.Equal(t, "Price", verrs[0].StructField())
	}
}

func TestApplication_Validate(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	tests := []struct {
		name    string
		app     Application
		wantErr map[string]string
	}{
		{
			name: "valid",
			app:  Application{Age: 70, Address: "Budapest", PhoneNumber: "06301234567", Experience: "kezdő"},
		},
		{
			name: "phone is optional",
			app:  Application{Age: 70, Experience: "kezdő"},
		},
		{
			name: "invalid",
			app:  Application{Age: 0, PhoneNumber: "12345", Experience: "   "},
			wantErr: map[string]string{
				"age":          "this field is required",
				"phone_number": "enter a valid phone number",
				"experience":   "this field is required",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.app.Validate(validate)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Equal(t, tc.wantErr, core.TranslateValidationErrors(err.(validator.ValidationErrors), translator))
			}
		})
	}
}
