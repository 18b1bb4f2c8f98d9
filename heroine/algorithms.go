package heroine

import (
	"github.com/tomWhiting/heroine-graph-sub003/algorithm"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/barneshut"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/bruteforce"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/codebase"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/community"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/density"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/forceatlas2"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/linlog"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/relativity"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/tfdp"
	"github.com/tomWhiting/heroine-graph-sub003/algorithm/tidytree"
)

// algorithmRegistry lists every repulsion-kernel constructor the façade
// can resolve a setForceAlgorithm(id) call against. Each subpackage owns
// its own Info().ID; this registry only needs to know how to build one.
var algorithmRegistry = []func() algorithm.Algorithm{
	barneshut.New,
	bruteforce.New,
	forceatlas2.New,
	density.New,
	linlog.New,
	tfdp.New,
	relativity.New,
	community.New,
	tidytree.New,
	codebase.New,
}
