package guide

import "github.com/shopspring/decimal"

// DefaultVolumetricDivisor divisor estándar cm³/kg para peso volumétrico.
const DefaultVolumetricDivisor = 5000

// Dimensions medidas del bulto en centímetros.
type Dimensions struct {
	Length decimal.Decimal
	Width  decimal.Decimal
	Height decimal.Decimal
}

// IsZero indica que no se informaron medidas.
func (d Dimensions) IsZero() bool {
	return d.Length.IsZero() && d.Width.IsZero() && d.Height.IsZero()
}

// VolumetricWeight = largo × ancho × alto / divisor, redondeado a 2 decimales.
func VolumetricWeight(d Dimensions, divisor int64) decimal.Decimal {
	if divisor <= 0 {
		divisor = DefaultVolumetricDivisor
	}
	vol := d.Length.Mul(d.Width).Mul(d.Height)
	return vol.Div(decimal.NewFromInt(divisor)).Round(2)
}

// TotalWeight peso cobrable: el mayor entre real y volumétrico.
func TotalWeight(real, dimensional decimal.Decimal) decimal.Decimal {
	return decimal.Max(real, dimensional)
}
