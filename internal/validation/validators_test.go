package validation

import "testing"

func TestValidateRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"5-S", false},
		{"100-M", false},
		{"1000-H", false},
		{"2-D", false},
		{"", true},
		{"fast", true},
		{"10-X", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := ValidateRate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePathPrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"/api/auth", false},
		{"/api/questions", false},
		{"/v1", false},
		{"", true},
		{"/", true},
		{"api/auth", true},
		{"/api/auth/", true},
		{"/api//auth", true},
		{"/api/../auth", true},
		{"/api/{id}", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			err := ValidatePathPrefix(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathPrefix(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCustomTags(t *testing.T) {
	t.Parallel()
	type sample struct {
		Rate   string `validate:"rate_format"`
		Prefix string `validate:"path_prefix"`
	}
	if err := Validate.Struct(sample{Rate: "5-S", Prefix: "/api/users"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
	if err := Validate.Struct(sample{Rate: "nope", Prefix: "/api/users/"}); err == nil {
		t.Error("invalid struct accepted")
	}
}
