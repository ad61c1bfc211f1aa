package routes

import (
	"github.com/dmitrijs2005/lifelink/internal/common"
)

// maxHops bounds redirect chains. The policy never needs more than two.
const maxHops = 4

// Resolve follows the gate from path until a view is admitted or the
// session is still loading. Unknown paths go to login. The returned
// decision is Wait or Admit; view is the final view.
func Resolve(a Access, path string) (View, Decision) {
	for i := 0; i < maxHops; i++ {
		v, ok := Lookup(path)
		if !ok {
			path = common.PathLogin
			continue
		}

		d := Authorize(a, v.Requirement)
		if d.Outcome != Redirect {
			return v, d
		}
		path = d.Target
	}

	v, _ := Lookup(common.PathLogin)
	return v, Decision{Outcome: Admit}
}
