package scene

import (
	"fmt"

	"github.com/achilleasa/polaris-accel/types"
)

var worldUp = types.Vec3{0, 1, 0}

// The camera type controls the scene camera. It is described by an
// orthonormal frame positioned at the camera eye.
type Camera struct {
	Position types.Vec3
	Forward  types.Vec3
	Right    types.Vec3
	Up       types.Vec3

	// Distance to the virtual image plane.
	FocalDistance float32
}

// Create a camera located at position looking at lookAt.
func NewCamera(position, lookAt types.Vec3) *Camera {
	c := &Camera{}
	c.Set(position, lookAt)
	return c
}

// Reset the camera frame so that it is positioned at position and looks at lookAt.
func (c *Camera) Set(position, lookAt types.Vec3) {
	c.Position = position
	c.FocalDistance = 1.0

	c.Forward = lookAt.Sub(position).Normalize()
	c.Right = worldUp.Cross(c.Forward).Normalize()
	c.Up = c.Forward.Cross(c.Right).Normalize()
}

// Move camera along its forward vector.
func (c *Camera) MoveForward(distance float32) {
	c.Position = c.Position.Add(c.Forward.Mul(distance))
}

// Move camera along its right vector.
func (c *Camera) MoveRight(distance float32) {
	c.Position = c.Position.Add(c.Right.Mul(distance))
}

// Move camera along its up vector.
func (c *Camera) MoveUp(distance float32) {
	c.Position = c.Position.Add(c.Up.Mul(distance))
}

// Tilt the camera up (or down for negative amounts).
func (c *Camera) RotateUp(amount float32) {
	c.Set(c.Position, c.Position.Add(c.Forward).Add(c.Up.Mul(amount)))
}

// Turn the camera right (or left for negative amounts).
func (c *Camera) RotateRight(amount float32) {
	c.Set(c.Position, c.Position.Add(c.Forward).Add(c.Right.Mul(amount)))
}

// Generate the direction of a primary ray through normalized screen
// coordinates u, v in [-1, 1]. The aspect ratio scales the horizontal
// component.
func (c *Camera) Ray(u, v, aspect float32) (origin, dir types.Vec3) {
	dir = c.Forward.Mul(c.FocalDistance).
		Add(c.Right.Mul(u * aspect)).
		Add(c.Up.Mul(v)).
		Normalize()
	return c.Position, dir
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera:\nPosition : (%3.3f, %3.3f, %3.3f)\nForward  : (%3.3f, %3.3f, %3.3f)\nUp       : (%3.3f, %3.3f, %3.3f)",
		c.Position[0], c.Position[1], c.Position[2],
		c.Forward[0], c.Forward[1], c.Forward[2],
		c.Up[0], c.Up[1], c.Up[2],
	)
}
