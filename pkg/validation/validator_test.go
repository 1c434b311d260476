package validation

import (
	"strings"
	"testing"
)

type sample struct {
	Name   string   `validate:"required,max=5"`
	Port   int      `validate:"gte=1,lte=65535"`
	Mode   string   `validate:"oneof=exact proximity"`
	Ratio  float64  `validate:"gt=0"`
	Floors []string `validate:"min=1,unique,dive,required"`
	From   string
	To     string `validate:"nefield=From"`
}

func valid() sample {
	return sample{Name: "ok", Port: 80, Mode: "exact", Ratio: 1, Floors: []string{"A"}, From: "a", To: "b"}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*sample)
		want   string
	}{
		{"valid", func(*sample) {}, ""},
		{"missing name", func(s *sample) { s.Name = "" }, "field is required"},
		{"long name", func(s *sample) { s.Name = "toolong" }, "must not exceed 5"},
		{"port", func(s *sample) { s.Port = 0 }, "must be at least 1"},
		{"mode", func(s *sample) { s.Mode = "fuzzy" }, "must be one of [exact proximity]"},
		{"ratio", func(s *sample) { s.Ratio = 0 }, "must be greater than 0"},
		{"no floors", func(s *sample) { s.Floors = nil }, "must be at least 1"},
		{"duplicate floors", func(s *sample) { s.Floors = []string{"A", "A"} }, "values must be unique"},
		{"same endpoints", func(s *sample) { s.To = s.From }, "must differ from From"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := Struct(&s)
			if tt.want == "" {
				if err != nil {
					t.Errorf("Struct() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Struct() error = %v, want %q", err, tt.want)
			}
		})
	}
}
