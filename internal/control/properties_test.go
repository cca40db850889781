package control

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type tick struct {
	target, measured KineticState
	dt               float64
}

var script = []tick{
	{KineticState{Position: 1, Velocity: 0.5}, KineticState{Position: 0.2, Velocity: 0.1}, 0.02},
	{KineticState{Position: 1, Velocity: 0.5}, KineticState{Position: 0.4, Velocity: 0.3}, 0.02},
	{KineticState{Position: 1, Velocity: 0.2}, KineticState{Position: 0.7, Velocity: 0.4}, 0.025},
	{KineticState{Position: 1, Velocity: 0.0}, KineticState{Position: 0.9, Velocity: 0.2}, 0.02},
}

func newTestSystem() *ControlSystem {
	cs, err := NewBuilder().
		PosFilter(LowPass(0.6)).
		PosPID(PIDCoefficients{KP: 1.2, KI: 0.4, KD: 0.05}).
		VelFilter(LowPass(0.3)).
		VelPID(PIDCoefficients{KP: 0.8, KI: 0.1, KD: 0.01}).
		Build()
	Expect(err).NotTo(HaveOccurred())
	return cs
}

func runScript(cs *ControlSystem) []float64 {
	outs := make([]float64, 0, len(script))
	for _, tk := range script {
		u, err := cs.Evaluate(tk.target, tk.measured, tk.dt)
		Expect(err).NotTo(HaveOccurred())
		outs = append(outs, u)
	}
	return outs
}

var _ = Describe("Low-pass filter", func() {
	DescribeTable("converges to a constant input",
		func(alpha float64) {
			c, err := NewChain(LowPass(alpha))
			Expect(err).NotTo(HaveOccurred())

			_, err = c.Apply(0)
			Expect(err).NotTo(HaveOccurred())

			var y float64
			for i := 0; i < 2000; i++ {
				y, err = c.Apply(4.2)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(y).To(BeNumerically("~", 4.2, 1e-9))
		},
		Entry("heavy smoothing", 0.05),
		Entry("moderate smoothing", 0.3),
		Entry("no smoothing", 1.0),
	)

	It("passes the first sample through after construction and reset", func() {
		c, err := NewChain(LowPass(0.1))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Apply(-12.5)).To(Equal(-12.5))

		_, _ = c.Apply(100)
		c.Reset()
		Expect(c.Apply(3.0)).To(Equal(3.0))
	})
})

var _ = Describe("Feedback term", func() {
	It("stays quiescent at zero error for any dt", func() {
		p := NewFeedbackTerm(PIDCoefficients{KP: 3, KI: 2, KD: 1})
		for _, dt := range []float64{1e-6, 0.001, 0.02, 1, 250} {
			Expect(p.Compute(0, dt)).To(Equal(0.0))
		}
		Expect(p.Integral()).To(Equal(0.0))
	})

	It("suppresses the derivative on the first call", func() {
		p := NewFeedbackTerm(PIDCoefficients{KP: 1, KD: 1000})
		Expect(p.Compute(2, 0.001)).To(Equal(2.0))

		p.Reset()
		Expect(p.Compute(-5, 0.001)).To(Equal(-5.0))
	})
})

var _ = Describe("Angular wrap", func() {
	It("takes the short way round", func() {
		Expect(Wrap(350, 10, Degrees)).To(BeNumerically("~", -20, 1e-9))
	})

	It("resolves half a turn to the positive boundary", func() {
		Expect(Wrap(math.Pi, 0, Radians)).To(Equal(math.Pi))
		Expect(Wrap(0, math.Pi, Radians)).To(Equal(math.Pi))
		Expect(Wrap(0, 180, Degrees)).To(Equal(180.0))
	})
})

var _ = Describe("ControlSystem", func() {
	It("matches a fresh instance after reset", func() {
		used := newTestSystem()
		runScript(used)
		runScript(used)
		Expect(used.Reset()).To(Succeed())

		Expect(runScript(used)).To(Equal(runScript(newTestSystem())))
	})

	It("treats an idle velocity axis as additive zero", func() {
		posOnly, err := NewBuilder().
			PosFilter(LowPass(0.6)).
			PosPID(PIDCoefficients{KP: 1.2, KI: 0.4, KD: 0.05}).
			Build()
		Expect(err).NotTo(HaveOccurred())
		both, err := NewBuilder().
			PosFilter(LowPass(0.6)).
			PosPID(PIDCoefficients{KP: 1.2, KI: 0.4, KD: 0.05}).
			VelPID(PIDCoefficients{KP: 0.8, KI: 0.1, KD: 0.01}).
			Build()
		Expect(err).NotTo(HaveOccurred())

		for _, tk := range script {
			measured := tk.measured
			measured.Velocity = tk.target.Velocity

			a, err := posOnly.Evaluate(tk.target, measured, tk.dt)
			Expect(err).NotTo(HaveOccurred())
			b, err := both.Evaluate(tk.target, measured, tk.dt)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeNumerically("~", a, 1e-12))
		}
	})

	DescribeTable("rejects a bad dt without mutating state",
		func(dt float64) {
			cs := newTestSystem()
			twin := newTestSystem()

			first := script[0]
			Expect(cs.Evaluate(first.target, first.measured, first.dt)).To(Equal(mustEval(twin, first)))

			_, err := cs.Evaluate(script[1].target, script[1].measured, dt)
			Expect(err).To(MatchError(ErrInvalidTimestep))

			for _, tk := range script[1:] {
				Expect(cs.Evaluate(tk.target, tk.measured, tk.dt)).To(Equal(mustEval(twin, tk)))
			}
		},
		Entry("zero", 0.0),
		Entry("negative", -0.02),
	)
})

func mustEval(cs *ControlSystem, tk tick) float64 {
	u, err := cs.Evaluate(tk.target, tk.measured, tk.dt)
	Expect(err).NotTo(HaveOccurred())
	return u
}
