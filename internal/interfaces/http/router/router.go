// Package router mounts the versioned API from declarative route tables.
package router

import (
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// Gate builds the middleware that admits only the given roles
type Gate func(roles ...shared.Role) gin.HandlerFunc

// Route is one endpoint. Roles narrows the roles inherited from the
// enclosing Resource; an empty Roles keeps them.
type Route struct {
	Method  string
	Path    string
	Roles   []shared.Role
	Handler gin.HandlerFunc
}

// Resource is a path prefix with its routes and nested resources
type Resource struct {
	Prefix   string
	Roles    []shared.Role
	Routes   []Route
	Children []Resource
}

// Mount registers resources under /api/<version>. mw runs for every route
// before the role gate.
func Mount(engine *gin.Engine, version string, gate Gate, mw []gin.HandlerFunc, resources ...Resource) {
	api := engine.Group("/api/"+version, mw...)
	for _, res := range resources {
		res.mount(api, gate)
	}
}

func (r Resource) mount(parent *gin.RouterGroup, gate Gate) {
	var mw []gin.HandlerFunc
	if len(r.Roles) > 0 {
		mw = append(mw, gate(r.Roles...))
	}
	group := parent.Group(r.Prefix, mw...)
	for _, rt := range r.Routes {
		chain := make([]gin.HandlerFunc, 0, 2)
		if len(rt.Roles) > 0 {
			chain = append(chain, gate(rt.Roles...))
		}
		group.Handle(rt.Method, rt.Path, append(chain, rt.Handler)...)
	}
	for _, child := range r.Children {
		child.mount(group, gate)
	}
}
