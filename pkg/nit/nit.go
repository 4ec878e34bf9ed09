// Package nit normaliza el NIT de las empresas cliente y valida su dígito de verificación.
package nit

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalid NIT con caracteres no permitidos, longitud fuera de rango o dígito de verificación errado.
var ErrInvalid = errors.New("nit inválido")

// pesos módulo 11 de la DIAN, alineados a la derecha del número base.
var weights = [15]int{71, 67, 59, 53, 47, 43, 41, 37, 29, 23, 19, 17, 13, 7, 3}

const (
	minDigits = 5
	maxDigits = 15
)

// Normalize quita puntos y espacios. Si el NIT trae dígito de verificación ("900.123.456-8")
// lo valida y devuelve "900123456-8"; sin él devuelve solo los dígitos.
func Normalize(taxID string) (string, error) {
	s := strings.TrimSpace(taxID)
	base, dv, hasDV := strings.Cut(s, "-")
	digits, err := extractDigits(base)
	if err != nil {
		return "", err
	}
	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", fmt.Errorf("%w: se esperan entre %d y %d dígitos, se encontraron %d", ErrInvalid, minDigits, maxDigits, len(digits))
	}
	if !hasDV {
		return digits, nil
	}
	dv = strings.TrimSpace(dv)
	if len(dv) != 1 || !unicode.IsDigit(rune(dv[0])) {
		return "", fmt.Errorf("%w: dígito de verificación %q", ErrInvalid, dv)
	}
	expected := VerificationDigit(digits)
	if dv[0] != expected {
		return "", fmt.Errorf("%w: dígito de verificación esperado %c, recibido %s", ErrInvalid, expected, dv)
	}
	return digits + "-" + dv, nil
}

// VerificationDigit calcula el dígito de verificación de un número base de solo dígitos.
func VerificationDigit(digits string) byte {
	var sum int
	offset := len(weights) - len(digits)
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weights[offset+i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder)
	}
	return byte('0' + (11 - remainder))
}

func extractDigits(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case r == '.' || r == ' ':
		default:
			return "", fmt.Errorf("%w: carácter %q no permitido", ErrInvalid, r)
		}
	}
	return b.String(), nil
}
