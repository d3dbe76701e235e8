package interview

import (
	"errors"
	"slices"
	"testing"

	"github.com/example/cheatgen/internal/core/schema"
)

func run(t *testing.T, a, b string, atob, btoa Cardinality, canExistAlone *bool) *Interview {
	t.Helper()
	iv := New()
	if err := iv.SubmitNames(a, b); err != nil {
		t.Fatalf("SubmitNames() error = %v", err)
	}
	if err := iv.SubmitCardinality(atob); err != nil {
		t.Fatalf("SubmitCardinality(A->B) error = %v", err)
	}
	if err := iv.SubmitCardinality(btoa); err != nil {
		t.Fatalf("SubmitCardinality(B->A) error = %v", err)
	}
	if canExistAlone != nil {
		if err := iv.SubmitDependency(*canExistAlone); err != nil {
			t.Fatalf("SubmitDependency() error = %v", err)
		}
	}
	return iv
}

func boolPtr(b bool) *bool { return &b }

func TestCardinalityTable(t *testing.T) {
	hasMany := func(t schema.Table) []string { return t.HasMany }
	hasOne := func(t schema.Table) []string { return t.HasOne }
	notConnected := func(t schema.Table) []string { return t.NotConnected }

	tests := []struct {
		name          string
		atob, btoa    Cardinality
		canExistAlone *bool
		want          Outcome

		// registry after Apply
		ownerList  func(schema.Table) []string
		fkRequired bool
		fkUnique   bool
	}{
		{
			name: "many/one is one-to-many owned by A",
			atob: Many, btoa: One, canExistAlone: boolPtr(false),
			want:      Outcome{Kind: OneToMany, Owner: "user", Owned: "post", ForeignKey: "user_id"},
			ownerList: hasMany, fkRequired: true,
		},
		{
			name: "one/one is one-to-one with unique FK on B",
			atob: One, btoa: One, canExistAlone: boolPtr(true),
			want:      Outcome{Kind: OneToOne, Owner: "user", Owned: "post", ForeignKey: "user_id", Nullable: true, Unique: true},
			ownerList: hasOne, fkUnique: true,
		},
		{
			name: "one/many is many-to-one owned by B",
			atob: One, btoa: Many, canExistAlone: boolPtr(true),
			want:      Outcome{Kind: ManyToOne, Owner: "post", Owned: "user", ForeignKey: "post_id", Nullable: true},
			ownerList: hasMany,
		},
		{
			name: "many/many uses a junction table",
			atob: Many, btoa: Many,
			want:      Outcome{Kind: ManyToMany, Owner: "user", Owned: "post", JunctionTable: "post_user"},
			ownerList: notConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := run(t, "user", "post", tt.atob, tt.btoa, tt.canExistAlone)
			if !iv.Done() {
				t.Fatalf("Step() = %s, want resolved", iv.Step())
			}
			got, err := iv.Outcome()
			if err != nil {
				t.Fatalf("Outcome() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Outcome() = %+v, want %+v", got, tt.want)
			}

			reg := schema.New()
			if err := Apply(reg, got); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			owner, _ := reg.TableByName(got.Owner)
			owned, _ := reg.TableByName(got.Owned)

			if list := tt.ownerList(owner); !slices.Equal(list, []string{got.Owned}) {
				t.Errorf("%s relationship list = %v, want [%s]", got.Owner, list, got.Owned)
			}
			if fks := owner.ForeignKeys(); len(fks) != 0 {
				t.Errorf("%s has foreign keys %v, want none", got.Owner, fks)
			}

			if got.Kind == ManyToMany {
				if !slices.Equal(owned.NotConnected, []string{got.Owner}) {
					t.Errorf("%s NotConnected = %v, want [%s]", got.Owned, owned.NotConnected, got.Owner)
				}
				if fks := owned.ForeignKeys(); len(fks) != 0 {
					t.Errorf("%s has foreign keys %v, want none", got.Owned, fks)
				}
				return
			}

			fk, ok := owned.Field(got.ForeignKey)
			if !ok {
				t.Fatalf("%s missing %s", got.Owned, got.ForeignKey)
			}
			if fk.Type.Required != tt.fkRequired || fk.Type.Unique != tt.fkUnique {
				t.Errorf("%s.%s required=%v unique=%v, want required=%v unique=%v",
					got.Owned, fk.Name, fk.Type.Required, fk.Type.Unique, tt.fkRequired, tt.fkUnique)
			}
		})
	}
}

func TestApplyOneToMany(t *testing.T) {
	reg := schema.New()
	iv := run(t, "User", " post ", Many, One, boolPtr(false))
	o, err := iv.Outcome()
	if err != nil {
		t.Fatalf("Outcome() error = %v", err)
	}
	if err := Apply(reg, o); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	post, ok := reg.TableByName("post")
	if !ok {
		t.Fatal("post not created")
	}
	fk, ok := post.Field("user_id")
	if !ok {
		t.Fatal("post missing user_id")
	}
	if !fk.Type.Required {
		t.Error("user_id nullable, want nullable=false")
	}
	user, _ := reg.TableByName("user")
	if !slices.Equal(user.HasMany, []string{"post"}) {
		t.Errorf("user HasMany = %v, want [post]", user.HasMany)
	}
}

func TestApplyReplacesPriorRelationship(t *testing.T) {
	reg := schema.New()
	user := reg.AddTable("user")
	if err := reg.AddRelationship(user, schema.ManyToMany, "post"); err != nil {
		t.Fatalf("AddRelationship() error = %v", err)
	}

	o, err := Resolve(Answers{TableA: "post", TableB: "user", AtoB: One, BtoA: One, CanExistAlone: boolPtr(true)})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if err := Apply(reg, o); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	u, _ := reg.TableByName("user")
	p, _ := reg.TableByName("post")
	if len(u.NotConnected) != 0 || len(p.NotConnected) != 0 {
		t.Errorf("many-to-many survived: user=%v post=%v", u.NotConnected, p.NotConnected)
	}
	if !slices.Equal(p.HasOne, []string{"user"}) {
		t.Errorf("post HasOne = %v, want [user]", p.HasOne)
	}
	fk, ok := u.Field("post_id")
	if !ok || !fk.Type.Unique || fk.Type.Required {
		t.Errorf("user post_id = %+v, want unique nullable", fk)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestNamingValidationBlocksAdvance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"missing second", "user", "  "},
		{"same after normalizing", "User", "user "},
		{"invalid name", "user", "1post"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := New()
			if err := iv.SubmitNames(tt.a, tt.b); err == nil {
				t.Error("SubmitNames() error = nil, want rejection")
			}
			if iv.Step() != StepNamingTables {
				t.Errorf("Step() = %s, want naming_tables", iv.Step())
			}
			if got := iv.Answers(); got.TableA != "" || got.TableB != "" {
				t.Errorf("Answers() = %+v, want nothing captured", got)
			}
		})
	}
}

func TestDependencySkippedForManyToMany(t *testing.T) {
	iv := run(t, "student", "course", Many, Many, nil)
	if !iv.Done() {
		t.Fatalf("Step() = %s, want resolved", iv.Step())
	}
	if err := iv.SubmitDependency(true); err == nil {
		t.Error("SubmitDependency() after resolve error = nil")
	}
	want := []Step{StepNamingTables, StepCardinalityAtoB, StepCardinalityBtoA}
	if got := iv.History(); !slices.Equal(got, want) {
		t.Errorf("History() = %v, want %v", got, want)
	}
}

func TestBackDiscardsAnswer(t *testing.T) {
	iv := run(t, "user", "post", Many, One, boolPtr(true))

	if !iv.Back() {
		t.Fatal("Back() = false")
	}
	if iv.Step() != StepDependency || iv.Answers().CanExistAlone != nil {
		t.Errorf("after Back: step=%s answers=%+v", iv.Step(), iv.Answers())
	}
	if !iv.Back() {
		t.Fatal("Back() = false")
	}
	if iv.Step() != StepCardinalityBtoA || iv.Answers().BtoA != "" {
		t.Errorf("after Back: step=%s answers=%+v", iv.Step(), iv.Answers())
	}
	if _, err := iv.Outcome(); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Outcome() error = %v, want ErrIncomplete", err)
	}

	// Changing the answer now skips the dependency question.
	if err := iv.SubmitCardinality(Many); err != nil {
		t.Fatalf("SubmitCardinality() error = %v", err)
	}
	o, err := iv.Outcome()
	if err != nil {
		t.Fatalf("Outcome() error = %v", err)
	}
	if o.Kind != ManyToMany {
		t.Errorf("Kind = %s, want many_to_many", o.Kind)
	}

	for iv.Back() {
	}
	if iv.Step() != StepNamingTables || iv.Answers().TableA != "" {
		t.Errorf("after full rewind: step=%s answers=%+v", iv.Step(), iv.Answers())
	}
}

func TestQuestions(t *testing.T) {
	iv := New()
	if got := iv.Question(); got != "Which two tables are related?" {
		t.Errorf("Question() = %q", got)
	}
	_ = iv.SubmitNames("user", "post")
	if got, want := iv.Question(), "How many posts can one user have?"; got != want {
		t.Errorf("Question() = %q, want %q", got, want)
	}
	_ = iv.SubmitCardinality(One)
	if got, want := iv.Question(), "How many users can one post have?"; got != want {
		t.Errorf("Question() = %q, want %q", got, want)
	}
	_ = iv.SubmitCardinality(Many)
	if got, want := iv.Question(), "Can a user exist without a post?"; got != want {
		t.Errorf("Question() = %q, want %q", got, want)
	}
}

func TestSummary(t *testing.T) {
	o := Outcome{Kind: OneToMany, Owner: "user", Owned: "post", ForeignKey: "user_id"}
	want := "one_to_many: user has many post; post.user_id references users (required)"
	if got := o.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestParseCardinality(t *testing.T) {
	tests := []struct {
		in      string
		want    Cardinality
		wantErr bool
	}{
		{"one", One, false},
		{" MANY ", Many, false},
		{"1", One, false},
		{"few", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCardinality(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCardinality() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCardinality() = %q, want %q", got, tt.want)
			}
		})
	}
}
