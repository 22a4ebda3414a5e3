package units

import "fmt"

// Convert переводит value из from в to внутри категории c.
// Юниты вне категории дают ErrInvalidUnit, неизвестная категория - ErrInvalidCategory.
func Convert(c Category, value float64, from, to Unit) (float64, error) {
	switch c {
	case Length, Weight, Time:
		return convertLinear(c, value, from, to)
	case Temperature:
		return convertTemperature(value, from, to)
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
}

// convertLinear: сначала в базовый юнит категории, потом из него в целевой.
func convertLinear(c Category, value float64, from, to Unit) (float64, error) {
	factors := catalog[c].toBase
	fFrom, ok := factors[from]
	if !ok {
		return 0, unitError(c, from)
	}
	fTo, ok := factors[to]
	if !ok {
		return 0, unitError(c, to)
	}
	if from == to {
		return value, nil
	}
	base := value * fFrom
	return base / fTo, nil
}

func convertTemperature(v float64, from, to Unit) (float64, error) {
	if !Temperature.Has(from) {
		return 0, unitError(Temperature, from)
	}
	if !Temperature.Has(to) {
		return 0, unitError(Temperature, to)
	}

	switch from {
	case Celsius:
		switch to {
		case Fahrenheit:
			return v*9/5 + 32, nil
		case Kelvin:
			return v + 273.15, nil
		}
	case Fahrenheit:
		switch to {
		case Celsius:
			return (v - 32) * 5 / 9, nil
		case Kelvin:
			return (v-32)*5/9 + 273.15, nil
		}
	case Kelvin:
		switch to {
		case Celsius:
			return v - 273.15, nil
		case Fahrenheit:
			return (v-273.15)*9/5 + 32, nil
		}
	}
	// from == to
	return v, nil
}

func unitError(c Category, u Unit) error {
	return fmt.Errorf("%w: %q is not a %s unit", ErrInvalidUnit, string(u), c)
}

// Table результаты Convert(Category, Value, Units[i], Units[j]) в Cells[i][j].
type Table struct {
	Category Category    `json:"category" msgpack:"category" yaml:"category"`
	Value    float64     `json:"value" msgpack:"value" yaml:"value"`
	Units    []Unit      `json:"units" msgpack:"units" yaml:"units"`
	Cells    [][]float64 `json:"cells" msgpack:"cells" yaml:"cells"`
}

func BuildTable(c Category, value float64) (Table, error) {
	us, err := UnitsOf(c)
	if err != nil {
		return Table{}, err
	}
	t := Table{Category: c, Value: value, Units: us, Cells: make([][]float64, len(us))}
	for i, from := range us {
		row := make([]float64, len(us))
		for j, to := range us {
			if row[j], err = Convert(c, value, from, to); err != nil {
				return Table{}, err
			}
		}
		t.Cells[i] = row
	}
	return t, nil
}
