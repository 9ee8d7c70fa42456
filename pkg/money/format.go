// Package money formatea importes en euros según la configuración regional.
//
// Reglas (como Intl.NumberFormat con style=currency, EUR, 2 decimales):
//
//	es-ES: 1234,50 €   12.345,60 €   (agrupa miles solo desde 5 dígitos)
//	ca-ES: 1.234,50 €
//	en-US: €1,234.50
//
// Entre el número y el símbolo va un espacio no separable (U+00A0).
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// NBSP espacio no separable usado entre importe y símbolo.
const NBSP = "\u00a0"

const symbolEUR = "€"

type localeFormat struct {
	tag          language.Tag
	decimalSep   string
	groupSep     string
	minGrouping  int // dígitos mínimos en el grupo superior para agrupar
	symbolBefore bool
}

// El primero es el valor por defecto del matcher.
var locales = []localeFormat{
	{tag: language.MustParse("es-ES"), decimalSep: ",", groupSep: ".", minGrouping: 2},
	{tag: language.MustParse("ca-ES"), decimalSep: ",", groupSep: ".", minGrouping: 1},
	{tag: language.AmericanEnglish, decimalSep: ".", groupSep: ",", minGrouping: 1, symbolBefore: true},
}

var matcher = language.NewMatcher(func() []language.Tag {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.tag
	}
	return tags
}())

// Formatter formatea y parsea importes para una configuración regional.
type Formatter struct {
	lf localeFormat
}

// NewFormatter elige el formato más cercano a locale (BCP 47, p. ej. "es-ES").
// Un locale vacío, ilegible o sin coincidencia usa es-ES.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return &Formatter{lf: locales[0]}
	}
	_, idx, _ := matcher.Match(tag)
	return &Formatter{lf: locales[idx]}
}

var defaultFormatter = NewFormatter("es-ES")

// Format formatea con la configuración por defecto (es-ES).
func Format(v decimal.Decimal) string { return defaultFormatter.Format(v) }

// FormatString formatea con la configuración por defecto (es-ES).
func FormatString(s string) string { return defaultFormatter.FormatString(s) }

// Locale etiqueta BCP 47 en uso.
func (f *Formatter) Locale() string { return f.lf.tag.String() }

// Format redondea a 2 decimales (mitad hacia fuera de cero) y aplica el formato.
func (f *Formatter) Format(v decimal.Decimal) string {
	r := v.Round(2)
	neg := r.IsNegative()
	fixed := r.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(fixed, ".")
	number := f.group(intPart) + f.lf.decimalSep + frac

	sign := ""
	if neg {
		sign = "-"
	}
	if f.lf.symbolBefore {
		return sign + symbolEUR + number
	}
	return sign + number + NBSP + symbolEUR
}

// FormatString formatea un valor numérico en texto; lo no numérico se formatea como cero.
func (f *Formatter) FormatString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return f.Format(decimal.Zero)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return f.Format(decimal.Zero)
	}
	return f.Format(v)
}

// Parse convierte un importe formateado por Format de vuelta a decimal.
func (f *Formatter) Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, symbolEUR, "")
	clean = strings.ReplaceAll(clean, NBSP, "")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, f.lf.groupSep, "")
	clean = strings.ReplaceAll(clean, f.lf.decimalSep, ".")
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: importe inválido %q: %w", s, err)
	}
	return v, nil
}

// group inserta separadores de miles en una cadena de dígitos.
func (f *Formatter) group(digits string) string {
	n := len(digits)
	if n <= 3 || n < 3+f.lf.minGrouping {
		return digits
	}
	var b strings.Builder
	b.Grow(n + n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteString(f.lf.groupSep)
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}
