package units

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	Length      Category = "Length"
	Weight      Category = "Weight"
	Temperature Category = "Temperature"
	Time        Category = "Time"
)

type Unit string

const (
	Meters      Unit = "Meters"
	Kilometers  Unit = "Kilometers"
	Miles       Unit = "Miles"
	Feet        Unit = "Feet"
	Inches      Unit = "Inches"
	Centimeters Unit = "Centimeters"

	Kilograms Unit = "Kilograms"
	Grams     Unit = "Grams"
	Pounds    Unit = "Pounds"
	Ounces    Unit = "Ounces"

	Celsius    Unit = "Celsius"
	Fahrenheit Unit = "Fahrenheit"
	Kelvin     Unit = "Kelvin"

	Seconds Unit = "Seconds"
	Minutes Unit = "Minutes"
	Hours   Unit = "Hours"
	Days    Unit = "Days"
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidUnit     = errors.New("invalid unit")
)

// Info описание категории для UI.
type Info struct {
	Category Category `json:"name" msgpack:"name" yaml:"name"`
	Icon     string   `json:"icon" msgpack:"icon" yaml:"icon"`
	Base     Unit     `json:"base_unit,omitempty" msgpack:"base_unit,omitempty" yaml:"base_unit,omitempty"`
	Units    []Unit   `json:"units" msgpack:"units" yaml:"units"`
}

type entry struct {
	icon  string
	base  Unit
	units []Unit
	// множитель unit -> base; nil для температуры
	toBase map[Unit]float64
}

// Порядок категорий и юнитов фиксирован: так их видит пользователь.
var order = []Category{Length, Weight, Temperature, Time}

var catalog = map[Category]entry{
	Length: {
		icon:  "📏",
		base:  Meters,
		units: []Unit{Meters, Kilometers, Miles, Feet, Inches, Centimeters},
		toBase: map[Unit]float64{
			Meters:      1,
			Kilometers:  1000,
			Miles:       1609.34,
			Feet:        0.3048,
			Inches:      0.0254,
			Centimeters: 0.01,
		},
	},
	Weight: {
		icon:  "⚖️",
		base:  Grams,
		units: []Unit{Kilograms, Grams, Pounds, Ounces},
		toBase: map[Unit]float64{
			Kilograms: 1000,
			Grams:     1,
			Pounds:    453.592,
			Ounces:    28.3495,
		},
	},
	Temperature: {
		icon:  "🌡️",
		units: []Unit{Celsius, Fahrenheit, Kelvin},
	},
	Time: {
		icon:  "⏰",
		base:  Seconds,
		units: []Unit{Seconds, Minutes, Hours, Days},
		toBase: map[Unit]float64{
			Seconds: 1,
			Minutes: 60,
			Hours:   3600,
			Days:    86400,
		},
	},
}

var aliases = map[string]Unit{
	"m": Meters, "meter": Meters, "metre": Meters, "metres": Meters,
	"km": Kilometers, "kilometer": Kilometers, "kilometre": Kilometers,
	"mi": Miles, "mile": Miles,
	"ft": Feet, "foot": Feet,
	"in": Inches, "inch": Inches,
	"cm": Centimeters, "centimeter": Centimeters,

	"kg": Kilograms, "kilogram": Kilograms,
	"g": Grams, "gram": Grams,
	"lb": Pounds, "lbs": Pounds, "pound": Pounds,
	"oz": Ounces, "ounce": Ounces,

	"c": Celsius, "°c": Celsius,
	"f": Fahrenheit, "°f": Fahrenheit,
	"k": Kelvin,

	"s": Seconds, "sec": Seconds, "second": Seconds,
	"min": Minutes, "minute": Minutes,
	"h": Hours, "hr": Hours, "hour": Hours,
	"d": Days, "day": Days,
}

// Categories возвращает все категории в порядке отображения.
func Categories() []Category {
	out := make([]Category, len(order))
	copy(out, order)
	return out
}

// UnitsOf возвращает копию списка юнитов категории.
func UnitsOf(c Category) ([]Unit, error) {
	e, ok := catalog[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
	out := make([]Unit, len(e.units))
	copy(out, e.units)
	return out, nil
}

func Lookup(c Category) (Info, error) {
	e, ok := catalog[c]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
	us := make([]Unit, len(e.units))
	copy(us, e.units)
	return Info{Category: c, Icon: e.icon, Base: e.base, Units: us}, nil
}

// Catalog весь справочник целиком.
func Catalog() []Info {
	out := make([]Info, 0, len(order))
	for _, c := range order {
		info, _ := Lookup(c)
		out = append(out, info)
	}
	return out
}

func (c Category) Icon() string { return catalog[c].icon }

func (c Category) Valid() bool {
	_, ok := catalog[c]
	return ok
}

// Has проверяет, что юнит принадлежит категории.
func (c Category) Has(u Unit) bool {
	for _, x := range catalog[c].units {
		if x == u {
			return true
		}
	}
	return false
}

// ParseCategory без учёта регистра.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range order {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// ParseUnit ищет юнит по имени или алиасу во всех категориях.
// Имена юнитов уникальны во всём справочнике, поэтому категория определяется однозначно.
func ParseUnit(s string) (Category, Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := aliases[key]; ok {
		return categoryOf(u), u, nil
	}
	for _, c := range order {
		for _, u := range catalog[c].units {
			if strings.EqualFold(key, string(u)) {
				return c, u, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// ParseUnitIn как ParseUnit, но юнит обязан принадлежать категории c.
func ParseUnitIn(c Category, s string) (Unit, error) {
	got, u, err := ParseUnit(s)
	if err != nil {
		return "", err
	}
	if got != c {
		return "", fmt.Errorf("%w: %q is not a %s unit", ErrInvalidUnit, s, c)
	}
	return u, nil
}

func categoryOf(u Unit) Category {
	for _, c := range order {
		if c.Has(u) {
			return c
		}
	}
	return ""
}
