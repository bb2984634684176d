package py2x3

import (
	"context"
	"os"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/2x3systems/dual2x3/lib2x3"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	pyCatalogType   = py.NewType("Catalog", "go2x3.Catalog")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type pyWorkspace struct {
	*lib2x3.Workspace
}

func (ws pyWorkspace) Type() *py.Type {
	return pyWorkspaceType
}

type pyCatalog struct {
	go2x3.Catalog
	ws *lib2x3.Workspace
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func getWorkspace(module py.Object) pyWorkspace {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := pyWorkspace{lib2x3.NewWorkspace(go2x3.DualiseOpts{})}
		py.SetAttrString(module, kWorkspaceAttr, ws)
		return ws
	}
	return wsObj.(pyWorkspace)
}

func loadInt(obj py.Object, what string) (int, error) {
	val, err := py.GetInt(obj)
	if err != nil {
		return 0, py.ExceptionNewf(py.TypeError, "%s: expected int (got %v)", what, obj.Type().Name)
	}
	return int(val), nil
}

func loadItems(obj py.Object, what string) ([]py.Object, error) {
	switch items := obj.(type) {
	case py.Tuple:
		return items, nil
	case *py.List:
		return items.Items, nil
	}
	return nil, py.ExceptionNewf(py.TypeError, "%s: expected list or tuple (got %v)", what, obj.Type().Name)
}

// loadDualGraph accepts either the rotation text format or a list of rotation rows.
func loadDualGraph(obj py.Object) (*go2x3.DualGraph, error) {
	if expr, isStr := obj.(py.String); isStr {
		G, err := lib2x3.ParseDualGraph(string(expr), 0)
		if err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		return G, nil
	}

	rows, err := loadItems(obj, "rows")
	if err != nil {
		return nil, err
	}
	G := &go2x3.DualGraph{
		Neighbours: make([]go2x3.NodeID, len(rows)*go2x3.MaxDegree),
		Degrees:    make([]uint8, len(rows)),
		Stride:     go2x3.MaxDegree,
	}
	for u, rowObj := range rows {
		row, err := loadItems(rowObj, "row")
		if err != nil {
			return nil, err
		}
		if len(row) > go2x3.MaxDegree {
			return nil, py.ExceptionNewf(py.ValueError, "node %d has %d neighbours (max %d)", u, len(row), go2x3.MaxDegree)
		}
		for i, vObj := range row {
			v, err := loadInt(vObj, "neighbour")
			if err != nil {
				return nil, err
			}
			if v < 0 || v >= len(rows) {
				return nil, py.ExceptionNewf(py.ValueError, "node %d refers to %d", u, v)
			}
			G.Neighbours[u*go2x3.MaxDegree+i] = go2x3.NodeID(v)
		}
		G.Degrees[u] = uint8(len(row))
	}
	return G, nil
}

func wrapCubicRows(X *go2x3.CubicGraph) py.Object {
	N := X.NumAtoms()
	rows := make(py.Tuple, N)
	for t := 0; t < N; t++ {
		row := X.Row(go2x3.NodeID(t))
		rows[t] = py.Tuple{py.Int(row[0]), py.Int(row[1]), py.Int(row[2])}
	}
	return rows
}

// Arg 1 (str | list): rotation system
func py_Dualise(module py.Object, args py.Tuple) (py.Object, error) {
	var graphObj py.Object
	err := py.ParseTuple(args, "O", &graphObj)
	if err != nil {
		return nil, err
	}
	G, err := loadDualGraph(graphObj)
	if err != nil {
		return nil, err
	}

	ws := getWorkspace(module)
	X, err := ws.DualiseGraph(context.Background(), G, 0)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return wrapCubicRows(X), nil
}

// Arg 1 (int): Nf
// Arg 2 (list): triangles (a, b, c), consistently oriented
func py_FromTriangles(module py.Object, args py.Tuple) (py.Object, error) {
	var nfObj, facesObj py.Object
	err := py.ParseTuple(args, "OO", &nfObj, &facesObj)
	if err != nil {
		return nil, err
	}
	Nf, err := loadInt(nfObj, "nf")
	if err != nil {
		return nil, err
	}
	items, err := loadItems(facesObj, "faces")
	if err != nil {
		return nil, err
	}

	faces := make([][3]go2x3.NodeID, len(items))
	for fi, faceObj := range items {
		face, err := loadItems(faceObj, "face")
		if err != nil {
			return nil, err
		}
		if len(face) != 3 {
			return nil, py.ExceptionNewf(py.ValueError, "face %d has %d nodes", fi, len(face))
		}
		for j := range face {
			v, err := loadInt(face[j], "face node")
			if err != nil {
				return nil, err
			}
			if v < 0 || v >= Nf {
				return nil, py.ExceptionNewf(py.ValueError, "face %d refers to node %d", fi, v)
			}
			faces[fi][j] = go2x3.NodeID(v)
		}
	}

	G, err := lib2x3.DualFromTriangles(Nf, faces, 0)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.String(G.String()), nil
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	return getWorkspace(module), nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	var pathObj py.Object
	err := py.ParseTuple(args, "O", &pathObj)
	if err != nil {
		return nil, err
	}
	pathname, isStr := pathObj.(py.String)
	if !isStr {
		return nil, py.ExceptionNewf(py.TypeError, "expected str (got %v)", pathObj.Type().Name)
	}
	_, err = os.Stat(string(pathname))
	if err == nil {
		return py.True, nil
	}
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return nil, py.ExceptionNewf(py.OSError, "%v", err)
}

// Arg 1 (str): pathname ("" for in-memory)
// Arg 2 (int): flags (optional)
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(pyWorkspace)

	var pathObj, flagsObj py.Object
	err := py.ParseTuple(args, "O|O", &pathObj, &flagsObj)
	if err != nil {
		return nil, err
	}
	pathname, isStr := pathObj.(py.String)
	if !isStr {
		return nil, py.ExceptionNewf(py.TypeError, "expected str (got %v)", pathObj.Type().Name)
	}
	flags := 0
	if flagsObj != nil {
		if flags, err = loadInt(flagsObj, "flags"); err != nil {
			return nil, err
		}
	}

	opts := go2x3.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: string(pathname),
	}
	cat, err := ws.OpenCatalog(opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return pyCatalog{cat, ws.Workspace}, nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if err := cat.Close(); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.None, nil
}

// Arg 1 (int): atom count
func py_Catalog_NumGraphs(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var nObj py.Object
	err := py.ParseTuple(args, "O", &nObj)
	if err != nil {
		return nil, err
	}
	N, err := loadInt(nObj, "N")
	if err != nil {
		return nil, err
	}
	return py.Int(cat.NumGraphs(N)), nil
}

// Arg 1 (str | list): rotation system
// Arg 2 (int): isomer ID
func py_Catalog_Add(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "catalog is in read-only mode")
	}

	var graphObj, idObj py.Object
	err := py.ParseTuple(args, "OO", &graphObj, &idObj)
	if err != nil {
		return nil, err
	}
	G, err := loadDualGraph(graphObj)
	if err != nil {
		return nil, err
	}
	id, err := loadInt(idObj, "id")
	if err != nil {
		return nil, err
	}

	X, err := cat.ws.DualiseGraph(context.Background(), G, uint64(id))
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.NewBool(cat.TryAddGraph(X)), nil
}

// Arg 1 (int): atom count
// Arg 2 (int): isomer ID
func py_Catalog_Get(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var nObj, idObj py.Object
	err := py.ParseTuple(args, "OO", &nObj, &idObj)
	if err != nil {
		return nil, err
	}
	N, err := loadInt(nObj, "N")
	if err != nil {
		return nil, err
	}
	id, err := loadInt(idObj, "id")
	if err != nil {
		return nil, err
	}
	X, err := cat.Get(N, uint64(id))
	if errors.Is(err, go2x3.ErrGraphNotFound) {
		return py.None, nil
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return wrapCubicRows(X), nil
}

func init() {

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["NumGraphs"] = py.MustNewMethod("NumGraphs", py_Catalog_NumGraphs, 0, "returns the number of graphs stored for an atom count")
		pyCatalogType.Dict["Add"] = py.MustNewMethod("Add", py_Catalog_Add, 0, "dualises a rotation system and adds the result")
		pyCatalogType.Dict["Get"] = py.MustNewMethod("Get", py_Catalog_Get, 0, "returns the stored rows for (N, id) or None")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Dualise", py_Dualise, 0, "returns the cubic neighbour rows of a rotation system"),
			py.MustNewMethod("FromTriangles", py_FromTriangles, 0, "returns the rotation text of a triangulation"),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(lib2x3.LIB_VERSION),
			"MAX_DEGREE":  py.Int(go2x3.MaxDegree),
			"READ_ONLY":   py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_py2x3",
				Doc:  "2x3 dual graph gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(pyWorkspace).Close()
				}
			},
		})
	}
}
