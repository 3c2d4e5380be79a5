package payroll

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var defaultRatesYAML []byte

// Contribution is an employee/employer pair of flat rates.
type Contribution struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
}

// Relief is a yearly relief computed as income × Rate, capped at Cap.
type Relief struct {
	Rate decimal.Decimal
	Cap  decimal.Decimal
}

func (r Relief) Apply(yearly decimal.Decimal) decimal.Decimal {
	return decimal.Min(yearly.Mul(r.Rate), r.Cap)
}

// Bracket taxes income above Over at Rate, on top of Base.
// The top bracket has Open set and no UpTo.
type Bracket struct {
	UpTo decimal.Decimal
	Open bool
	Base decimal.Decimal
	Rate decimal.Decimal
	Over decimal.Decimal
}

type PCBSchedule struct {
	IndividualRelief decimal.Decimal
	SpouseRelief     decimal.Decimal
	EPFRelief        Relief
	SOCSORelief      Relief
	EISRelief        Relief
	Brackets         []Bracket
}

type Rates struct {
	EPF   Contribution
	SOCSO Contribution
	EIS   Contribution
	PCB   PCBSchedule
}

type ratesFile struct {
	Contributions map[string]struct {
		Employee string `yaml:"employee"`
		Employer string `yaml:"employer"`
	} `yaml:"contributions"`
	PCB struct {
		IndividualRelief string `yaml:"individual_relief"`
		SpouseRelief     string `yaml:"spouse_relief"`
		Reliefs          map[string]struct {
			Rate string `yaml:"rate"`
			Cap  string `yaml:"cap"`
		} `yaml:"reliefs"`
		Brackets []struct {
			UpTo string `yaml:"up_to"`
			Base string `yaml:"base"`
			Rate string `yaml:"rate"`
			Over string `yaml:"over"`
		} `yaml:"brackets"`
	} `yaml:"pcb"`
}

var (
	defaultRatesOnce sync.Once
	defaultRates     Rates
)

// DefaultRates returns the embedded statutory table.
func DefaultRates() Rates {
	defaultRatesOnce.Do(func() {
		rates, err := LoadRates(defaultRatesYAML)
		if err != nil {
			panic(fmt.Sprintf("payroll: embedded rates.yaml is invalid: %v", err))
		}
		defaultRates = rates
	})
	return defaultRates
}

// LoadRates parses a rates document in the rates.yaml layout.
func LoadRates(data []byte) (Rates, error) {
	var file ratesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Rates{}, fmt.Errorf("decode rates: %w", err)
	}

	p := &parser{}
	var out Rates
	for name, dst := range map[string]*Contribution{"epf": &out.EPF, "socso": &out.SOCSO, "eis": &out.EIS} {
		c, ok := file.Contributions[name]
		if !ok {
			return Rates{}, fmt.Errorf("contributions.%s is missing", name)
		}
		dst.Employee = p.parse("contributions."+name+".employee", c.Employee)
		dst.Employer = p.parse("contributions."+name+".employer", c.Employer)
	}

	out.PCB.IndividualRelief = p.parse("pcb.individual_relief", file.PCB.IndividualRelief)
	out.PCB.SpouseRelief = p.parse("pcb.spouse_relief", file.PCB.SpouseRelief)
	for name, dst := range map[string]*Relief{"epf": &out.PCB.EPFRelief, "socso": &out.PCB.SOCSORelief, "eis": &out.PCB.EISRelief} {
		r, ok := file.PCB.Reliefs[name]
		if !ok {
			return Rates{}, fmt.Errorf("pcb.reliefs.%s is missing", name)
		}
		dst.Rate = p.parse("pcb.reliefs."+name+".rate", r.Rate)
		dst.Cap = p.parse("pcb.reliefs."+name+".cap", r.Cap)
	}

	if len(file.PCB.Brackets) == 0 {
		return Rates{}, fmt.Errorf("pcb.brackets is empty")
	}
	for i, b := range file.PCB.Brackets {
		field := fmt.Sprintf("pcb.brackets[%d]", i)
		bracket := Bracket{
			Base: p.parse(field+".base", b.Base),
			Rate: p.parse(field+".rate", b.Rate),
			Over: p.parse(field+".over", b.Over),
		}
		if b.UpTo == "" {
			if i != len(file.PCB.Brackets)-1 {
				return Rates{}, fmt.Errorf("%s: only the last bracket may be open", field)
			}
			bracket.Open = true
		} else {
			bracket.UpTo = p.parse(field+".up_to", b.UpTo)
		}
		if i > 0 && !bracket.Open && !bracket.UpTo.GreaterThan(out.PCB.Brackets[i-1].UpTo) {
			return Rates{}, fmt.Errorf("%s: up_to must increase", field)
		}
		out.PCB.Brackets = append(out.PCB.Brackets, bracket)
	}
	if !out.PCB.Brackets[len(out.PCB.Brackets)-1].Open {
		return Rates{}, fmt.Errorf("pcb.brackets: the last bracket must be open")
	}

	if p.err != nil {
		return Rates{}, p.err
	}
	return out, nil
}

type parser struct {
	err error
}

func (p *parser) parse(field, raw string) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.err = fmt.Errorf("%s: %q is not a number", field, raw)
		return decimal.Zero
	}
	return d
}
