package sim

// Euler is the fixed-step explicit Euler update: angular velocity first, then
// angle from the updated velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(x JointState, alpha, dt float64) JointState {
	omega := x.Omega + alpha*dt
	theta := x.Theta + omega*dt
	return JointState{Theta: theta, Omega: omega}
}
