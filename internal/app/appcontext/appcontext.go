package appcontext

const (
	EnvServer Env = iota
	EnvCLI
)

type Env int

type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{
		Env: env,
	}
}

// ServesHTTP reports whether the fiber server and HTTP controllers belong in the graph.
func (c Ctx) ServesHTTP() bool {
	return c.Env == EnvServer
}
