/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/schwarz/InputParameters"
	"github.com/notargets/schwarz/element"
	"github.com/notargets/schwarz/kernels"
	"github.com/notargets/schwarz/linsolve"
	"github.com/notargets/schwarz/mesh"
	"github.com/notargets/schwarz/space"
	"github.com/notargets/schwarz/ssc"
	"github.com/notargets/schwarz/types"
	"github.com/notargets/schwarz/utils"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a Poisson model problem with patch-smoothed PCG",
	Long: `Assembles the high-order Laplace operator on a built-in mesh and solves
it with conjugate gradients preconditioned by two-level subspace correction`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("solve called")
		ipFile, _ := cmd.Flags().GetString("inputParametersFile")
		sp := processSolveInput(ipFile)
		if n, _ := cmd.Flags().GetInt("meshSize"); n != 0 {
			sp.MeshSize = n
		}
		if n, _ := cmd.Flags().GetInt("order"); n != 0 {
			sp.PolynomialOrder = n
		}
		if err = RunSolve(sp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func processSolveInput(ipFile string) (sp *InputParameters.SolverParameters) {
	sp = &InputParameters.SolverParameters{
		Title:           "Poisson Model Problem",
		Dimension:       2,
		MeshSize:        16,
		PolynomialOrder: 3,
		Tolerance:       1.e-8,
		MaxIterations:   200,
		Preconditioner:  "scp",
	}
	if len(ipFile) == 0 {
		return
	}
	data, err := ioutil.ReadFile(ipFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Test Case"
Dimension: 2
MeshSize: 16
PolynomialOrder: 3
Tolerance: 1.e-8
MaxIterations: 200
Preconditioner: scp
SolverOptions:
  scp_composite_type: additive
  scp_lo_type: cholesky
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if err = sp.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- MeshSize\n\t- PolynomialOrder")
	SolveCmd.Flags().IntP("meshSize", "k", 0, "override mesh size from the input file")
	SolveCmd.Flags().IntP("order", "n", 0, "override polynomial order from the input file")
}

// RunSolve assembles -Laplace(u) = 1 with homogeneous Dirichlet walls on a
// built-in mesh and runs the preconditioned solve, printing the residual
// history.
func RunSolve(sp *InputParameters.SolverParameters) (err error) {
	sp.Print()
	var (
		m     *mesh.Mesh
		el    element.Element
		shape = types.ScalarShape()
	)
	switch sp.Dimension {
	case 1:
		m = mesh.NewMesh1D(0, 1, sp.MeshSize)
		el = element.NewInterval(sp.PolynomialOrder)
	case 2:
		m = mesh.NewUnitSquare(sp.MeshSize)
		el = element.NewTriangle(sp.PolynomialOrder)
	}
	if sp.FieldDimension > 0 {
		shape = types.VectorShape(sp.FieldDimension)
	}
	var fs *space.FunctionSpace
	if fs, err = space.NewFunctionSpace(m, el, shape); err != nil {
		return
	}
	fmt.Printf("%s\n", fs)
	var (
		bcs  = []*space.DirichletBC{space.NewDirichletBC(fs, sp.BCValue, 0)}
		form = kernels.NewForm(kernels.Laplace, fs)
		op   *ssc.Operator
	)
	if op, err = ssc.AssembleOperator(form, bcs); err != nil {
		return
	}
	var b utils.Vector
	if b, err = unitLoadVector(fs, bcs); err != nil {
		return
	}

	db := linsolve.NewOptionsDB()
	for k, v := range sp.SolverOptions {
		db.Set(k, v)
	}
	var pc linsolve.Preconditioner = linsolve.Identity{}
	if sp.Preconditioner == "scp" {
		var scp *ssc.SubspaceCorrection
		if scp, err = ssc.New(form, bcs, db.Sub("scp_")); err != nil {
			return
		}
		if err = scp.SetUp(op); err != nil {
			return
		}
		scp.View(os.Stdout)
		pc = scp
	}

	x, status, history, err := linsolve.PCG(op.A, b, pc, sp.Tolerance, sp.MaxIterations)
	if err != nil {
		return
	}
	linsolve.ReportHistory(os.Stdout, history)
	if !status.Converged {
		err = fmt.Errorf("outer solve failed: %s", status.Reason)
		return
	}
	fmt.Printf("converged in %d iterations, residual %8.5e, solution norm %8.5f\n",
		status.Iterations, status.Residual, x.Norm())
	return
}

// unitLoadVector assembles the load vector of the constant source f = 1 via
// the mass form. Constrained entries are set to the prescribed boundary
// value so the identity rows of the operator impose it; later conditions
// override earlier ones on shared dofs, matching the ordered bc semantics.
func unitLoadVector(fs *space.FunctionSpace, bcs []*space.DirichletBC) (b utils.Vector, err error) {
	var (
		massOp *ssc.Operator
	)
	if massOp, err = ssc.AssembleOperator(kernels.NewForm(kernels.Mass, fs), nil); err != nil {
		return
	}
	b = massOp.A.MulVec(utils.NewVector(fs.Size()).Set(1))
	var (
		data = b.Data()
		bs   = fs.BlockSize()
	)
	for _, bc := range bcs {
		for _, d := range bc.Dofs {
			for c := 0; c < bs; c++ {
				data[d*bs+c] = bc.Value
			}
		}
	}
	return
}
