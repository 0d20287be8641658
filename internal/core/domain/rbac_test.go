package domain

import (
	"errors"
	"slices"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"", RoleGuest, false},
		{"   ", RoleGuest, false},
		{"admin", RoleAdmin, false},
		{"Engineer", RoleEngineer, false},
		{" SALES ", RoleSales, false},
		{"guest", RoleGuest, false},
		{"user", "", true},
		{"superadmin", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("ParseRole(%q): expected ErrValidation, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveAccessibleCategories_RoleDefaults(t *testing.T) {
	guest := ResolveAccessibleCategories(Principal{Role: RoleGuest})
	if !slices.Equal(guest, []string{CategoryMotors}) {
		t.Fatalf("guest defaults: got %v", guest)
	}

	admin := ResolveAccessibleCategories(Principal{Role: RoleAdmin})
	if !slices.Equal(admin, AllCategories) {
		t.Fatalf("admin defaults: got %v", admin)
	}

	sales := ResolveAccessibleCategories(Principal{Role: RoleSales})
	if !slices.Equal(sales, []string{CategoryMotors, CategoryDrives, CategoryPanels}) {
		t.Fatalf("sales defaults: got %v", sales)
	}
}

func TestResolveAccessibleCategories_OverrideWins(t *testing.T) {
	override := []string{CategoryGenerators, "pumps"}
	for _, role := range Roles {
		got := ResolveAccessibleCategories(Principal{Role: role, AllowedCategories: override})
		if !slices.Equal(got, override) {
			t.Fatalf("role %s: expected override %v, got %v", role, override, got)
		}
	}
}

func TestResolveAccessibleCategories_DoesNotAliasTable(t *testing.T) {
	got := ResolveAccessibleCategories(Principal{Role: RoleAdmin})
	got[0] = "tampered"

	again := ResolveAccessibleCategories(Principal{Role: RoleAdmin})
	if again[0] != CategoryMotors {
		t.Fatalf("policy table was mutated through returned slice: %v", again)
	}
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		p        Principal
		action   Action
		resource string
		allowed  bool
	}{
		{"guest views motors", Principal{Role: RoleGuest}, ActionView, "motors", true},
		{"guest views drives", Principal{Role: RoleGuest}, ActionView, "drives", false},
		{"view is case-insensitive", Principal{Role: RoleGuest}, ActionView, "Motors", true},
		{"override grants view", Principal{Role: RoleGuest, AllowedCategories: []string{"panels"}}, ActionView, "panels", true},
		{"override replaces defaults", Principal{Role: RoleGuest, AllowedCategories: []string{"panels"}}, ActionView, "motors", false},
		{"engineer edits drives", Principal{Role: RoleEngineer}, ActionEdit, "drives", true},
		{"engineer edits panels", Principal{Role: RoleEngineer}, ActionEdit, "panels", false},
		{"sales edits anything", Principal{Role: RoleSales}, ActionEdit, "", false},
		{"engineer deletes", Principal{Role: RoleEngineer}, ActionDelete, "motors", false},
		{"admin deletes", Principal{Role: RoleAdmin}, ActionDelete, "transformers", true},
		{"admin manages users", Principal{Role: RoleAdmin}, ActionManageUsers, "", true},
		{"engineer manages users", Principal{Role: RoleEngineer}, ActionManageUsers, "", false},
		{"engineer exports", Principal{Role: RoleEngineer}, ActionExportData, "", true},
		{"sales exports", Principal{Role: RoleSales}, ActionExportData, "", false},
		{"unknown action", Principal{Role: RoleAdmin}, Action("launch"), "", false},
		{"unknown role", Principal{Role: Role("root")}, ActionView, "motors", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.p, tc.action, tc.resource)
			if d.Allowed != tc.allowed {
				t.Fatalf("expected allowed=%v, got %v (%s)", tc.allowed, d.Allowed, d.Reason)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatalf("denial must carry a reason")
			}
		})
	}
}

func TestAuthorize_UnknownActionReason(t *testing.T) {
	d := Authorize(Principal{Role: RoleAdmin}, Action("launch"), "")
	if d.Reason != "action not recognized" {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
	if !errors.Is(d.Err(), ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", d.Err())
	}
}

func TestDecisionErr_AllowedIsNil(t *testing.T) {
	if err := Authorize(Principal{Role: RoleAdmin}, ActionManageUsers, "").Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestPolicyFor_EveryRoleHasEntry(t *testing.T) {
	for _, r := range Roles {
		p, ok := PolicyFor(r)
		if !ok {
			t.Fatalf("missing policy for %s", r)
		}
		if len(p.View) == 0 {
			t.Fatalf("role %s has empty view set", r)
		}
		if p.Edit == nil || p.Delete == nil {
			t.Fatalf("role %s: edit/delete must be non-nil", r)
		}
	}
	if _, ok := PolicyFor(Role("nobody")); ok {
		t.Fatalf("unexpected policy for unknown role")
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := NormalizeCategories([]string{" Motors", "drives", "", "MOTORS", "panels "})
	want := []string{"motors", "drives", "panels"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterCategories(t *testing.T) {
	all := []CatalogCategory{{Slug: "motors"}, {Slug: "drives"}, {Slug: "panels"}}
	got := FilterCategories(all, []string{"panels", "motors"})
	if len(got) != 2 || got[0].Slug != "motors" || got[1].Slug != "panels" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestClaimsFor_ResolvesCategories(t *testing.T) {
	u := &User{ID: "1", Username: "eve", Email: "eve@x.com", Role: RoleEngineer}
	c := ClaimsFor(u)
	if !slices.Equal(c.AllowedCategories, []string{CategoryMotors, CategoryDrives, CategorySoftstarters}) {
		t.Fatalf("unexpected resolved categories: %v", c.AllowedCategories)
	}
	if c.Role != RoleEngineer || c.UserID != "1" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestValidateCategories(t *testing.T) {
	if err := ValidateCategories(nil); err != nil {
		t.Fatalf("empty override must be valid: %v", err)
	}
	if err := ValidateCategories(NormalizeCategories([]string{" Motors", "drives"})); err != nil {
		t.Fatalf("known categories rejected: %v", err)
	}
	err := ValidateCategories([]string{"motors", "spaceships"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
