package sanitizer

import "comanda/pkg/cpf"

// NormalizeCPF returns the digits-only form of a valid CPF, or "" for anything else.
func NormalizeCPF(raw string) string {
	return cpf.Normalize(raw)
}

func FormatCPF(raw string) string {
	return cpf.Format(raw)
}
