package systems

import (
	"roguie-server/internal/domain"
)

// particleRequest - заявка на визуальный эффект.
type particleRequest struct {
	x, y       int
	glyph      string
	fg, bg     string
	lifetimeMs float64
}

// ParticleBuilder копит заявки на эффекты от систем внутри тика;
// система спавна превращает их в эфемерные сущности одним махом.
type ParticleBuilder struct {
	requests []particleRequest
}

func NewParticleBuilder() *ParticleBuilder {
	return &ParticleBuilder{}
}

// Request ставит эффект в очередь.
func (pb *ParticleBuilder) Request(x, y int, glyph, fg, bg string, lifetimeMs float64) {
	pb.requests = append(pb.requests, particleRequest{
		x: x, y: y, glyph: glyph, fg: fg, bg: bg, lifetimeMs: lifetimeMs,
	})
}

// RunParticleSpawn создает сущности-частицы по накопленным заявкам.
func RunParticleSpawn(ctx *Context) {
	for _, req := range ctx.Particles.requests {
		p := ctx.World.Create()
		ctx.World.Add(p, domain.CPosition, &domain.Position{X: req.x, Y: req.y})
		ctx.World.Add(p, domain.CRenderable, &domain.Renderable{
			Glyph: req.glyph, FG: req.fg, BG: req.bg, RenderOrder: 0,
		})
		ctx.World.Add(p, domain.CParticleLifetime, &domain.ParticleLifetime{
			RemainingMs: req.lifetimeMs,
		})
	}
	ctx.Particles.requests = ctx.Particles.requests[:0]
}

// CullDeadParticles списывает прошедшее время с частиц и удаляет истекшие.
// Единственное место, где течение времени (а не ход) меняет состояние.
func CullDeadParticles(ctx *Context, elapsedMs float64) {
	for _, e := range ctx.World.Join(domain.CParticleLifetime) {
		lifetime, _ := ecsGet[domain.ParticleLifetime](ctx, e, domain.CParticleLifetime)
		lifetime.RemainingMs -= elapsedMs
		if lifetime.RemainingMs < 0 {
			ctx.World.Destroy(e)
		}
	}
}
