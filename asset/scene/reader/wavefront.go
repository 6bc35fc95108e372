package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/polaris-accel/asset"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/log"
	"github.com/achilleasa/polaris-accel/types"
	"github.com/pkg/errors"
)

// The name of the material assigned to faces that are not preceded by a
// usemtl statement.
const defaultMaterialName = ""

type wavefrontMaterial struct {
	Name string

	// Diffuse/Albedo color.
	Kd types.Vec3

	// Specular color.
	Ks types.Vec3

	// Emissive color.
	Ke types.Vec3

	// Index of refraction.
	Ni float32

	// True if this material is used by at least one face.
	Used bool
}

// Map wavefront material properties to a scene material. Specular
// materials take precedence over emissive ones which in turn take
// precedence over diffuse ones. A specular material with a non-zero
// index of refraction is treated as a dielectric.
func (wf *wavefrontMaterial) sceneMaterial() scene.Material {
	isSpecular := wf.Ks.MaxComponent() > 0.0
	isEmissive := wf.Ke.MaxComponent() > 0.0

	switch {
	case isSpecular && wf.Ni == 0.0:
		return scene.Material{Color: wf.Ks.Vec4(1), Type: scene.Mirror}
	case isSpecular:
		return scene.Material{Color: wf.Ks.Vec4(1), Type: scene.Dielectric, Index: wf.Ni}
	case isEmissive:
		return scene.Material{Color: wf.Ke.Vec4(1), Type: scene.Emissive}
	}
	return scene.Material{Color: wf.Kd.Vec4(1), Type: scene.Diffuse}
}

type wavefrontReader struct {
	logger log.Logger

	// The parsed mesh.
	mesh *Mesh

	// Triangle material indices into the materials slice; remapped once
	// unused materials are pruned.
	triMaterials []int

	// A map of material names to parsed wavefront materials
	matNameToIndex map[string]int

	// Currently selected material.
	curMaterial int

	// Parsed wavefront materials.
	materials []*wavefrontMaterial

	// List of vertices and normals. Texture coordinates are validated but
	// not stored.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvCount    int

	// Optional camera definition.
	cameraEye, cameraLook *types.Vec3

	// An error stack that provides additional error information when
	// mesh files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront mesh reader.
func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger:         log.New("wavefront reader"),
		matNameToIndex: make(map[string]int),
		curMaterial:    -1,
	}
}

// Read mesh definition.
func (r *wavefrontReader) Read(res *asset.Resource) (*Mesh, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, res.Path())
	start := time.Now()

	r.mesh = &Mesh{Name: res.Path()}
	if err := r.parse(res); err != nil {
		return nil, err
	}

	if r.cameraEye != nil {
		look := types.Vec3{}
		if r.cameraLook != nil {
			look = *r.cameraLook
		}
		r.mesh.Camera = scene.NewCamera(*r.cameraEye, look)
	}

	r.processMaterials()

	r.logger.Noticef(
		"parsed %d triangles and %d materials in %d ms",
		len(r.mesh.Triangles), len(r.mesh.Materials), time.Since(start).Nanoseconds()/1e6,
	)
	return r.mesh, nil
}

// Generate scene materials for material entries that are in use and update the
// material indices for all parsed triangles.
func (r *wavefrontReader) processMaterials() {
	wfToMesh := make([]int32, len(r.materials))
	pruned := 0
	for wfIndex, wfMat := range r.materials {
		if !wfMat.Used {
			r.logger.Infof("skipping unused material %q", wfMat.Name)
			pruned++
			continue
		}

		r.mesh.Materials = append(r.mesh.Materials, wfMat.sceneMaterial())
		r.mesh.MaterialNames = append(r.mesh.MaterialNames, wfMat.Name)
		wfToMesh[wfIndex] = int32(len(r.mesh.Materials) - 1)
	}

	for triIndex, wfIndex := range r.triMaterials {
		r.mesh.Triangles[triIndex].Material = wfToMesh[wfIndex]
	}

	if pruned > 0 {
		r.logger.Noticef("pruned %d unused materials", pruned)
	}
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Select the default material for faces not using one, creating it on
// first use.
func (r *wavefrontReader) defaultMaterial() int {
	matIndex, exists := r.matNameToIndex[defaultMaterialName]
	if !exists {
		r.materials = append(r.materials, &wavefrontMaterial{
			Name: defaultMaterialName,
			Kd:   types.Vec3{0.7, 0.7, 0.7},
		})
		matIndex = len(r.materials) - 1
		r.matNameToIndex[defaultMaterialName] = matIndex
	}
	return matIndex
}

// Parse wavefront object format.
func (r *wavefrontReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := r.uvCount
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Name(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			if err := r.include(res, lineNum, lineTokens[0], lineTokens[1]); err != nil {
				return err
			}
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Name(), lineNum, `unsupported syntax for "usemtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matIndex, exists := r.matNameToIndex[lineTokens[1]]
			if !exists {
				return r.emitError(res.Name(), lineNum, `undefined material with name "%s"`, lineTokens[1])
			}
			r.curMaterial = matIndex
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Name(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Name(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			if _, err := parseVec2(lineTokens); err != nil {
				return r.emitError(res.Name(), lineNum, "%s", err.Error())
			}
			r.uvCount++
		case "g", "o", "s":
			// Grouping and smoothing statements do not affect the
			// triangle soup.
		case "f":
			triangles, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Name(), lineNum, "%s", err.Error())
			}

			for range triangles {
				r.triMaterials = append(r.triMaterials, r.curMaterial)
			}
			r.mesh.Triangles = append(r.mesh.Triangles, triangles...)
		case "camera_eye", "camera_look":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Name(), lineNum, "%s", err.Error())
			}
			if lineTokens[0] == "camera_eye" {
				r.cameraEye = &v
			} else {
				r.cameraLook = &v
			}
		default:
			r.logger.Debugf("[%s: %d] ignoring unsupported statement %q", res.Name(), lineNum, lineTokens[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Name(), lineNum, "%s", err.Error())
	}

	return nil
}

// Parse an included object file or material library.
func (r *wavefrontReader) include(res *asset.Resource, lineNum int, statement, target string) error {
	r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Name(), lineNum, statement))

	incRes, err := asset.NewResource(target, res)
	if err != nil {
		return r.emitError(res.Name(), lineNum, "%s", err.Error())
	}
	defer incRes.Close()

	switch statement {
	case "call":
		err = r.parse(incRes)
	case "mtllib":
		err = r.parseMaterials(incRes)
	}

	if err != nil {
		return err
	}
	r.popFrame()
	return nil
}

// Parse face definition. Each face definitions consists of at least 3
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// Faces with more than 3 vertices are converted into a triangle fan
// around the first vertex.
func (r *wavefrontReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) ([]scene.Triangle, error) {
	argCount := len(lineTokens) - 1
	if argCount < 3 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, argCount)
	}

	vertices := make([]types.Vec3, argCount)
	normals := make([]types.Vec3, argCount)
	expIndices := 0
	hasNormals := false
	for arg := 0; arg < argCount; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
			if expIndices > 3 {
				return nil, fmt.Errorf("face argument %d contains %d indices; expected at most 3", arg, expIndices)
			}
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		if expIndices > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], r.uvCount, relUvOffset); err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		if expIndices > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normals[arg] = r.normalList[vOffset]
			hasNormals = true
		}
	}

	// If no material defined select the default. Also flag the current material
	// as being in use so we don't prune it later.
	if r.curMaterial == -1 {
		r.curMaterial = r.defaultMaterial()
	}
	r.materials[r.curMaterial].Used = true

	triangles := make([]scene.Triangle, 0, argCount-2)
	for i := 1; i < argCount-1; i++ {
		tri := scene.NewTriangle(vertices[0], vertices[i], vertices[i+1], 0)

		// Keep the face normal assigned by NewTriangle unless the face
		// supplies its own normals.
		if hasNormals {
			for triIndex, selectIndex := range [3]int{0, i, i + 1} {
				tri.V[triIndex].Normal = normals[selectIndex].Normalize().Vec4(0)
			}
		}
		triangles = append(triangles, tri)
	}

	return triangles, nil
}

// Parse a wavefront material library.
func (r *wavefrontReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *wavefrontMaterial = nil
	var matName string = ""

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Name(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName = lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Name(), lineNum, `material "%s" already defined`, matName)
			}

			// Allocate new material and add it to library
			curMaterial = &wavefrontMaterial{Name: matName}
			r.materials = append(r.materials, curMaterial)
			r.matNameToIndex[matName] = len(r.materials) - 1
		default:
			if curMaterial == nil {
				return r.emitError(res.Name(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Name(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterialIndex, exists := r.matNameToIndex[lineTokens[1]]
				if !exists {
					return r.emitError(res.Name(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				*curMaterial = *r.materials[baseMaterialIndex]
				curMaterial.Name = matName
				curMaterial.Used = false
			case "Kd":
				curMaterial.Kd, err = parseVec3(lineTokens)
			case "Ks":
				curMaterial.Ks, err = parseVec3(lineTokens)
			case "Ke":
				curMaterial.Ke, err = parseVec3(lineTokens)
			case "Ni":
				curMaterial.Ni, err = parseFloat32(lineTokens)
			default:
				r.logger.Debugf("[%s: %d] ignoring unsupported material property %q", res.Name(), lineNum, lineTokens[0])
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Name(), lineNum, "%s", err.Error())
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Name(), lineNum, "%s", err.Error())
	}

	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	switch {
	case index < 0:
		vOffset = coordListLen + int(index)
	case index == 0:
		return -1, fmt.Errorf("index 0 is not valid")
	default:
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
