package naming

import (
	"testing"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"category", "categories"},
		{"person", "people"},
		{"bus", "buses"},
		{"status", "statuses"},
		{"child", "children"},
		{"user", "users"},
		{"cheat", "cheats"},
		{"party", "parties"},
		{"day", "days"},
		{"key", "keys"},
		{"class", "classes"},
		{"dish", "dishes"},
		{"church", "churches"},
		{"box", "boxes"},
		{"quiz", "quizes"},
		{"hero", "heroes"},
		{"radio", "radios"},
		{"photo", "photos"},
		{"knife", "knives"},
		{"leaf", "leaves"},
		{"cliff", "cliffs"},
		{"roof", "roofs"},
		{"Language", "languages"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Pluralize(tt.input); got != tt.want {
				t.Errorf("Pluralize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user", "User"},
		{"blog_post", "BlogPost"},
		{"category", "Category"},
		{"a", "A"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ClassName(tt.input); got != tt.want {
				t.Errorf("ClassName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJunctionNameSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"user", "group"},
		{"tag", "cheat"},
		{"a", "b"},
		{"post_tag", "post"},
	}

	for _, p := range pairs {
		ab := JunctionName(p[0], p[1])
		ba := JunctionName(p[1], p[0])
		if ab != ba {
			t.Errorf("JunctionName(%q, %q) = %q but reversed = %q", p[0], p[1], ab, ba)
		}
	}

	if got := JunctionName("user", "group"); got != "group_user" {
		t.Errorf("JunctionName(user, group) = %q, want %q", got, "group_user")
	}
}

func TestNameValidation(t *testing.T) {
	tests := []struct {
		name     string
		validTbl bool
		validFld bool
	}{
		{"user", true, true},
		{"user_2", true, true},
		{"_password_hash", false, true},
		{"User", false, false},
		{"2user", false, false},
		{"", false, false},
		{"user-name", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTableName(tt.name); got != tt.validTbl {
				t.Errorf("IsValidTableName(%q) = %v, want %v", tt.name, got, tt.validTbl)
			}
			if got := IsValidFieldName(tt.name); got != tt.validFld {
				t.Errorf("IsValidFieldName(%q) = %v, want %v", tt.name, got, tt.validFld)
			}
		})
	}
}

func TestLooksPlural(t *testing.T) {
	if !LooksPlural("users") {
		t.Error("LooksPlural(users) = false, want true")
	}
	if LooksPlural("user") {
		t.Error("LooksPlural(user) = true, want false")
	}
	if LooksPlural("") {
		t.Error("LooksPlural(\"\") = true, want false")
	}
}

func TestForeignKeyName(t *testing.T) {
	if got := ForeignKeyName("user"); got != "user_id" {
		t.Errorf("ForeignKeyName(user) = %q, want %q", got, "user_id")
	}
}

func TestGeneratedCodeNames(t *testing.T) {
	tests := []struct {
		name      string
		keyword   bool
		routeName bool
		modelAttr bool
	}{
		{"user", false, false, false},
		{"class", true, false, false},
		{"import", true, false, false},
		{"global", true, false, false},
		{"as", true, false, false},
		{"request", false, true, false},
		{"data", false, true, false},
		{"db", false, true, false},
		{"resource", false, true, false},
		{"metadata", false, false, true},
		{"query", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPythonKeyword(tt.name); got != tt.keyword {
				t.Errorf("IsPythonKeyword(%q) = %v, want %v", tt.name, got, tt.keyword)
			}
			if got := ShadowsRouteName(tt.name); got != tt.routeName {
				t.Errorf("ShadowsRouteName(%q) = %v, want %v", tt.name, got, tt.routeName)
			}
			if got := IsModelAttribute(tt.name); got != tt.modelAttr {
				t.Errorf("IsModelAttribute(%q) = %v, want %v", tt.name, got, tt.modelAttr)
			}
		})
	}
}
