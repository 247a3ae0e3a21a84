package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/landing/config"
)

// Dimensions parameterize the branching model.
type Dimensions struct {
	TrunkRadius  float64
	TrunkLength  float64
	TrunkSpacing float64 // Distance between the two trunk axes
	BranchRadius float64
	BranchLength float64
	BranchHeight float64 // Fraction of trunk length where branches attach
	Splay        float64 // Radians between a branch and the trunk axis
}

// DimensionsFromConfig converts geometry config into model dimensions.
func DimensionsFromConfig(cfg config.GeometryConfig) Dimensions {
	return Dimensions{
		TrunkRadius:  cfg.TrunkRadius,
		TrunkLength:  cfg.TrunkLength,
		TrunkSpacing: cfg.TrunkSpacing,
		BranchRadius: cfg.BranchRadius,
		BranchLength: cfg.BranchLength,
		BranchHeight: cfg.BranchHeight,
		Splay:        cfg.SplayDegrees * math.Pi / 180,
	}
}

// Part roles within the model.
const (
	RoleTrunk  = "trunk"
	RoleBranch = "branch"
)

// Part is one capsule of the model.
type Part struct {
	Capsule
	Role string
}

// Model is the fixed-topology branching model: two parallel trunks, each
// carrying a sub-assembly of two splayed branches. Always six parts.
type Model struct {
	Parts []Part
}

// BuildModel assembles the model in model space, centered on the origin,
// trunks along +Y.
func BuildModel(d Dimensions) Model {
	parts := make([]Part, 0, 6)
	half := d.TrunkSpacing / 2

	for _, side := range []float64{-1, 1} {
		trunk := NewCapsule(d.TrunkRadius, d.TrunkLength)
		trunk.A.X = side * half
		trunk.B.X = side * half
		parts = append(parts, Part{Capsule: trunk, Role: RoleTrunk})
	}

	for _, side := range []float64{-1, 1} {
		root := r3.Vec{
			X: side * half,
			Y: -d.TrunkLength/2 + d.BranchHeight*d.TrunkLength,
		}
		// One branch leans outward in the trunk plane, the other leans
		// outward and forward; both at the splay angle from the trunk.
		outward := r3.NewRotation(-side*d.Splay, r3.Vec{Z: 1}).Rotate(r3.Vec{Y: 1})
		forward := r3.NewRotation(side*math.Pi/4, r3.Vec{Y: 1}).Rotate(outward)
		parts = append(parts,
			Part{Capsule: Segment(root, outward, d.BranchRadius, d.BranchLength), Role: RoleBranch},
			Part{Capsule: Segment(root, forward, d.BranchRadius, d.BranchLength), Role: RoleBranch},
		)
	}

	return Model{Parts: parts}
}

// Place returns the model's capsules in world space.
func (m Model) Place(t Transform) []Capsule {
	out := make([]Capsule, len(m.Parts))
	for i, p := range m.Parts {
		out[i] = p.Capsule.Transform(t)
	}
	return out
}

// BoundingRadius returns the radius of a sphere around the model origin
// that contains every part.
func (m Model) BoundingRadius() float64 {
	r := 0.0
	for _, p := range m.Parts {
		r = math.Max(r, r3.Norm(p.A)+p.Radius)
		r = math.Max(r, r3.Norm(p.B)+p.Radius)
	}
	return r
}
