package core

import (
	"encoding/json"
	"testing"
)

func TestSettingsResolveName(t *testing.T) {
	named := Settings{KeyUser1Name: "Ana", KeyUser2Name: "Bruno"}
	empty := Settings{}
	blank := Settings{KeyUser1Name: ""}

	cases := []struct {
		s    Settings
		role Role
		want string
	}{
		{named, RoleUser1, "Ana"},
		{named, RoleUser2, "Bruno"},
		{named, RoleShared, "Ambos"},
		{empty, RoleUser1, "Pessoa 1"},
		{empty, RoleUser2, "Pessoa 2"},
		{blank, RoleUser1, "Pessoa 1"},
		{nil, RoleUser1, "Pessoa 1"},
		{named, "Compartilhado", "Compartilhado"},
		{named, "", ""},
	}
	for _, tc := range cases {
		if got := tc.s.ResolveName(tc.role); got != tc.want {
			t.Fatalf("%v/%q: expected %q, got %q", tc.s, tc.role, tc.want, got)
		}
		// idempotent
		if again := tc.s.ResolveName(tc.role); again != tc.want {
			t.Fatalf("second resolve of %q changed: %q", tc.role, again)
		}
	}
}

func TestSettingsUnmarshalStringifies(t *testing.T) {
	var s Settings
	raw := `{"user1_name":"Ana","access_pin":1234,"flag":true,"empty":null}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if s[KeyAccessPIN] != "1234" {
		t.Fatalf("expected stringified pin, got %q", s[KeyAccessPIN])
	}
	if s["flag"] != "true" || s["empty"] != "" || s[KeyUser1Name] != "Ana" {
		t.Fatalf("unexpected settings %v", s)
	}
	pin, ok := s.PIN()
	if !ok || pin != "1234" {
		t.Fatalf("expected pin 1234, got %q %v", pin, ok)
	}
}

func TestSettingsCloneIsIndependent(t *testing.T) {
	s := Settings{KeyUser1Name: "Ana"}
	c := s.Clone()
	c[KeyUser1Name] = "Bia"
	if s[KeyUser1Name] != "Ana" {
		t.Fatalf("clone shares storage")
	}
}
