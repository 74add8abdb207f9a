package contracts

import "github.com/julienschmidt/httprouter"

// Handler registers a resource's routes on the API router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Stopper is a background worker released on graceful shutdown.
type Stopper interface {
	Stop()
}
