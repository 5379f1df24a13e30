package http

import "testing"

func TestValidUsername(t *testing.T) {
	valid := []string{"lucia", "asesor_1", "Maria-Jose", "root"}
	for _, s := range valid {
		if !ValidUsername(s) {
			t.Errorf("ValidUsername(%q) = false", s)
		}
	}
	invalid := []string{"", "con espacio", "tilde-é", "a;drop", "user@kennedy"}
	for _, s := range invalid {
		if ValidUsername(s) {
			t.Errorf("ValidUsername(%q) = true", s)
		}
	}
}

func TestValidConfigKey(t *testing.T) {
	if !ValidConfigKey("bot_enabled") || !ValidConfigKey("bot_prompt") {
		t.Error("known settings keys rejected")
	}
	for _, s := range []string{"", "bot-enabled", "bot enabled", "clave.rara"} {
		if ValidConfigKey(s) {
			t.Errorf("ValidConfigKey(%q) = true", s)
		}
	}
}

func TestValidDNI(t *testing.T) {
	valid := []string{"", "123456", "40123456", "1234567890"}
	for _, s := range valid {
		if !ValidDNI(s) {
			t.Errorf("ValidDNI(%q) = false", s)
		}
	}
	invalid := []string{"12345", "12345678901", "40.123.456", "abc12345"}
	for _, s := range invalid {
		if ValidDNI(s) {
			t.Errorf("ValidDNI(%q) = true", s)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("hola\x00mundo"); got != "holamundo" {
		t.Errorf("null byte survived: %q", got)
	}
	if got := SanitizeString("acentos y eñes: ñá"); got != "acentos y eñes: ñá" {
		t.Errorf("valid utf-8 mangled: %q", got)
	}
	if got := SanitizeString("rota\xff"); got != "rota" {
		t.Errorf("invalid utf-8 survived: %q", got)
	}
}

func TestValidateLength(t *testing.T) {
	if !ValidateLength("hola", 1, 10) {
		t.Error("in-range string rejected")
	}
	if ValidateLength("", 1, 10) || ValidateLength("demasiado largo", 1, 5) {
		t.Error("out-of-range string accepted")
	}
}
