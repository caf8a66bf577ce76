package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Quero SEGURANÇA para a aposentadoria", "quero seguranca aposentadoria"},
		{"Ações e criptomoedas!", "acoes criptomoedas!"},
		{"  de   para  com ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Quero segurança e baixo risco para minha aposentadoria", "quero seguranca baixo risco minha aposentadoria"},
		{"Investir em ações, CDB & Tesouro!!!", "investir acoes cdb tesouro"},
		{"eu vou ao rio", "vou rio"},
		{"médio-prazo", "medioprazo"},
		{"Poupança_2024", "poupanca_2024"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Quero crescimento RÁPIDO com alavancagem; e day trade.",
		"Reserva de emergência, estabilidade e proteção do patrimônio",
		"a e o de da do",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
		n := Normalize(in)
		if again := Normalize(n); again != n {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, n, again)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("  renda   fixa ")
	if len(got) != 2 || got[0] != "renda" || got[1] != "fixa" {
		t.Errorf("Tokens = %v, want [renda fixa]", got)
	}
}
