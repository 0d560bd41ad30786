package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolverParameters(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Test Case
Dimension: 2
MeshSize: 16
PolynomialOrder: 3
FieldDimension: 0
Tolerance: 1.e-8
MaxIterations: 200
Preconditioner: scp
SolverOptions:
  scp_composite_type: additive
  scp_lo_type: cholesky
  scp_sub_parallel_degree: "4"
`)
	var input SolverParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, 2, input.Dimension)
	assert.Equal(t, 3, input.PolynomialOrder)
	assert.Equal(t, "additive", input.SolverOptions["scp_composite_type"])
	assert.Equal(t, "4", input.SolverOptions["scp_sub_parallel_degree"])
	input.Print()
	assert.Equal(t, 200, input.MaxIterations)

	// Validation rejects nonsense dimensions
	bad := SolverParameters{Dimension: 3, MeshSize: 4, PolynomialOrder: 2}
	assert.Error(t, bad.Validate())
}
