package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type SolverParameters struct {
	Title           string            `yaml:"Title"`
	Dimension       int               `yaml:"Dimension"`       // 1 or 2
	MeshSize        int               `yaml:"MeshSize"`        // cells in 1D, quads per side in 2D
	PolynomialOrder int               `yaml:"PolynomialOrder"` // fine space degree
	FieldDimension  int               `yaml:"FieldDimension"`  // 0 = scalar, d = d-vector
	BCValue         float64           `yaml:"BCValue"`
	Tolerance       float64           `yaml:"Tolerance"`
	MaxIterations   int               `yaml:"MaxIterations"`
	Preconditioner  string            `yaml:"Preconditioner"` // none, scp
	SolverOptions   map[string]string `yaml:"SolverOptions"`  // flat options, e.g. scp_composite_type
}

func (sp *SolverParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, sp); err != nil {
		return err
	}
	return sp.Validate()
}

func (sp *SolverParameters) Validate() error {
	if sp.Dimension != 1 && sp.Dimension != 2 {
		return fmt.Errorf("Dimension must be 1 or 2, have %d", sp.Dimension)
	}
	if sp.MeshSize < 1 {
		return fmt.Errorf("MeshSize must be at least 1, have %d", sp.MeshSize)
	}
	if sp.PolynomialOrder < 1 {
		return fmt.Errorf("PolynomialOrder must be at least 1, have %d", sp.PolynomialOrder)
	}
	return nil
}

func (sp *SolverParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", sp.Dimension)
	fmt.Printf("[%d]\t\t\t\t= MeshSize\n", sp.MeshSize)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", sp.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Field Dimension\n", sp.FieldDimension)
	fmt.Printf("%8.5f\t\t= BCValue\n", sp.BCValue)
	fmt.Printf("%8.2e\t\t= Tolerance\n", sp.Tolerance)
	fmt.Printf("[%d]\t\t\t= MaxIterations\n", sp.MaxIterations)
	fmt.Printf("[%s]\t\t\t= Preconditioner\n", sp.Preconditioner)
	keys := make([]string, len(sp.SolverOptions))
	i := 0
	for k := range sp.SolverOptions {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("SolverOptions[%s] = %v\n", key, sp.SolverOptions[key])
	}
}
