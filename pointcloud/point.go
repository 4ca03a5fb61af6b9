package pointcloud

import (
	"github.com/golang/geo/r3"
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Data describes data associated with a single point within a PointCloud.
type Data interface {
	// HasValue returns whether or not this point has some user data value
	// associated with it.
	HasValue() bool

	// Value returns the user data set value, if it exists.
	Value() int

	// SetValue sets the given user data value on the point.
	SetValue(v int) Data

	// Intensity returns the intensity of the point, or 0 if it has none.
	Intensity() uint16

	// SetIntensity sets the intensity on the point.
	SetIntensity(v uint16) Data
}

type basicData struct {
	hasValue bool
	value    int

	intensity uint16
}

// NewBasicData returns a point data with no value.
func NewBasicData() Data {
	return &basicData{}
}

// NewValueData returns a point data with the given value.
func NewValueData(v int) Data {
	return &basicData{hasValue: true, value: v}
}

func (bd *basicData) HasValue() bool {
	return bd.hasValue
}

func (bd *basicData) Value() int {
	return bd.value
}

func (bd *basicData) SetValue(v int) Data {
	bd.hasValue = true
	bd.value = v
	return bd
}

func (bd *basicData) Intensity() uint16 {
	return bd.intensity
}

func (bd *basicData) SetIntensity(v uint16) Data {
	bd.intensity = v
	return bd
}
