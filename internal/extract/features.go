package extract

import "regexp"

// Quantitative markers used by downstream retrieval to prefer sentences
// that carry measurements.
var (
	numberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d+\.\d+\b`),                      // 3.14
		regexp.MustCompile(`\b\d+\b`),                           // 42
		regexp.MustCompile(`\b\d+\.?\d*[eE][+-]?\d+\b`),         // 1.5e-3
		regexp.MustCompile(`\b\d+\.?\d*\s*[×x]\s*10[⁻⁺]?\d+\b`), // 1.5 × 10⁻³
	}

	unitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(V|mV|kV|A|mA|μA|Ah|mAh|Wh|kWh)\b`),
		regexp.MustCompile(`\b(g|mg|μg|kg|mol|mmol|μmol)\b`),
		regexp.MustCompile(`\b(m|cm|mm|μm|nm|km)\b`),
		regexp.MustCompile(`\b(L|mL|μL)\b`),
		regexp.MustCompile(`\b(s|ms|μs|min|h|hr)\b`),
		regexp.MustCompile(`(°C|°F|K)\b`),
		regexp.MustCompile(`\b(Pa|kPa|MPa|GPa|bar|atm)\b`),
		regexp.MustCompile(`\b(Hz|kHz|MHz|GHz)\b`),
		regexp.MustCompile(`\b(W|mW|kW|MW)\b`),
		regexp.MustCompile(`\b(J|kJ|MJ|cal|kcal)\b`),
		regexp.MustCompile(`(%|\bppm\b|\bppb\b)`),
		regexp.MustCompile(`\b(M|mM|μM)\b`),
	}
)

// DetectNumbersAndUnits reports whether a sentence mentions a numeric value
// and a recognized scientific unit.
func DetectNumbersAndUnits(sentence string) (hasNumber, hasUnit bool) {
	for _, p := range numberPatterns {
		if p.MatchString(sentence) {
			hasNumber = true
			break
		}
	}
	for _, p := range unitPatterns {
		if p.MatchString(sentence) {
			hasUnit = true
			break
		}
	}
	return hasNumber, hasUnit
}
