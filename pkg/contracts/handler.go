package contracts

import "github.com/julienschmidt/httprouter"

// Handler is an HTTP surface that pkg/app mounts on its own router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
