package pbrt

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gopbrt/pbrtscene/types"
)

// ParamKind is the canonical PBRT parameter type, after alias
// normalization (spec.md §3).
type ParamKind uint8

const (
	KindInteger ParamKind = iota
	KindFloat
	KindBool
	KindString
	KindTexture
	KindPoint3
	KindNormal3
	KindRGB
	KindSpectrum
	KindBlackbody
)

var kindNames = map[string]ParamKind{
	"integer":   KindInteger,
	"float":     KindFloat,
	"bool":      KindBool,
	"string":    KindString,
	"texture":   KindTexture,
	"point3":    KindPoint3,
	"point":     KindPoint3,
	"vector":    KindPoint3,
	"vector3":   KindPoint3,
	"normal3":   KindNormal3,
	"normal":    KindNormal3,
	"rgb":       KindRGB,
	"color":     KindRGB,
	"spectrum":  KindSpectrum,
	"blackbody": KindBlackbody,
}

func (k ParamKind) String() string {
	for word, kind := range kindNames {
		if kind == k && !isAliasWord(word) {
			return word
		}
	}
	return "unknown"
}

func isAliasWord(w string) bool {
	switch w {
	case "point", "vector", "vector3", "normal", "color":
		return true
	}
	return false
}

// paramRegistry maps a parameter name to the set of canonical kinds it may
// be declared with. This is the "fixed parameter-to-kind registry" invariant
// from spec.md §3, modeled on the teacher's
// asset/material/node.go:bxdfAllowedParameters validation table.
var paramRegistry = map[string][]ParamKind{
	// Shape
	"P":       {KindPoint3},
	"indices": {KindInteger},
	"N":       {KindNormal3},
	"uv":      {KindFloat},
	"st":      {KindFloat},
	"filename": {KindString},

	// Camera / Film
	"frameaspectratio": {KindFloat},
	"fov":              {KindFloat},
	"aperture":         {KindFloat},
	"focaldistance":    {KindFloat},
	"xresolution":      {KindInteger},
	"yresolution":      {KindInteger},

	// Lights
	"I":        {KindRGB, KindSpectrum, KindBlackbody},
	"L":        {KindRGB, KindSpectrum, KindBlackbody},
	"scale":    {KindRGB, KindFloat, KindSpectrum, KindBlackbody},
	"mapname":  {KindString},
	"twosided": {KindBool},

	// Materials
	"Kd":        {KindRGB, KindTexture, KindSpectrum, KindBlackbody},
	"Ks":        {KindRGB, KindTexture, KindSpectrum, KindBlackbody},
	"Kr":        {KindRGB, KindTexture, KindSpectrum, KindBlackbody},
	"Kt":        {KindRGB, KindTexture, KindSpectrum, KindBlackbody},
	"eta":       {KindRGB, KindSpectrum, KindFloat},
	"k":         {KindRGB, KindSpectrum, KindFloat},
	"roughness": {KindFloat, KindTexture},
	"type":      {KindString},
	"amount":    {KindFloat},
	"namedmaterial1": {KindString},
	"namedmaterial2": {KindString},
	"bump":           {KindTexture},
	"bumpmap":        {KindTexture},

	// Textures
	"uscale": {KindFloat},
	"vscale": {KindFloat},
	"value":  {KindFloat, KindRGB},
	"tex1":   {KindFloat, KindRGB, KindTexture},
	"tex2":   {KindFloat, KindRGB, KindTexture},
}

// Parameter is a typed named parameter; only the field(s) matching Kind are
// populated (spec.md §3 / SPEC_FULL §3: "tagged variant with one case per
// canonical kind").
type Parameter struct {
	Kind ParamKind
	Name string

	Ints    []int32
	Floats  []float32
	Strings []string
	RGBs    []types.Vec3
}

// allowedKinds returns which kinds a parameter registry is known to accept
// for the given name; an empty (nil) result means the name is unconstrained
// (accept whatever kind the scene file declares).
func allowedKinds(name string) []ParamKind {
	return paramRegistry[name]
}

func kindAllowed(name string, kind ParamKind) bool {
	allowed := allowedKinds(name)
	if allowed == nil {
		return true
	}
	for _, k := range allowed {
		if k == kind {
			return true
		}
	}
	return false
}

// parseParameters reads zero or more "<kind> <name>" parameter declarations
// until the next token is not a String (spec.md §4.3).
func (p *Parser) parseParameters() ([]Parameter, error) {
	var params []Parameter
	for p.cur.Kind == String {
		param, err := p.parseOneParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, *param)
	}
	return params, nil
}

func (p *Parser) parseOneParameter() (*Parameter, error) {
	header := p.cur
	fields := strings.Fields(header.Text)
	if len(fields) != 2 {
		return nil, p.syntaxErrorAt(header, "malformed parameter header %q; expected \"<kind> <name>\"", header.Text)
	}
	kindWord, name := fields[0], fields[1]
	kind, ok := kindNames[kindWord]
	if !ok {
		return nil, p.syntaxErrorAt(header, "unknown parameter kind %q", kindWord)
	}
	if !kindAllowed(name, kind) {
		allowed := allowedKinds(name)
		names := make([]string, len(allowed))
		for i, k := range allowed {
			names[i] = k.String()
		}
		return nil, p.syntaxErrorAt(header, "parameter %q does not accept kind %q; expected one of %s", name, kindWord, strings.Join(names, ", "))
	}
	if err := p.advance(); err != nil && err != errEndOfInput {
		return nil, err
	}

	param := &Parameter{Kind: kind, Name: name}
	if err := p.parseParameterValue(header, param); err != nil {
		return nil, err
	}
	if len(param.Ints) == 0 && len(param.Floats) == 0 && len(param.Strings) == 0 && len(param.RGBs) == 0 {
		return nil, p.syntaxErrorAt(header, "parameter %q has no values", name)
	}
	return param, nil
}

// parseParameterValue parses either a single scalar token or a bracketed
// array, per spec.md §4.3 step 3, including spectrum/blackbody conversion
// (step 4).
func (p *Parser) parseParameterValue(header Token, param *Parameter) error {
	bracketed := false
	if p.cur.Kind == Punctuation && p.cur.Text == "[" {
		bracketed = true
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
	}

	switch param.Kind {
	case KindInteger:
		if err := p.collectInts(param, bracketed); err != nil {
			return err
		}
	case KindFloat:
		if err := p.collectFloats(param, bracketed); err != nil {
			return err
		}
	case KindBool:
		if err := p.collectBools(param, bracketed); err != nil {
			return err
		}
	case KindString, KindTexture:
		if err := p.collectStrings(param, bracketed); err != nil {
			return err
		}
	case KindPoint3, KindNormal3:
		flat := &Parameter{}
		if err := p.collectFloats(flat, bracketed); err != nil {
			return err
		}
		if len(flat.Floats)%3 != 0 {
			return p.syntaxErrorAt(header, "parameter %q: array length %d is not a multiple of 3", param.Name, len(flat.Floats))
		}
		for i := 0; i < len(flat.Floats); i += 3 {
			param.RGBs = append(param.RGBs, types.Vec3{flat.Floats[i], flat.Floats[i+1], flat.Floats[i+2]})
		}
	case KindRGB:
		flat := &Parameter{}
		if err := p.collectFloats(flat, bracketed); err != nil {
			return err
		}
		if len(flat.Floats)%3 != 0 {
			return p.syntaxErrorAt(header, "parameter %q: array length %d is not a multiple of 3", param.Name, len(flat.Floats))
		}
		for i := 0; i < len(flat.Floats); i += 3 {
			param.RGBs = append(param.RGBs, types.Vec3{flat.Floats[i], flat.Floats[i+1], flat.Floats[i+2]})
		}
	case KindSpectrum:
		if err := p.collectSpectrum(header, param, bracketed); err != nil {
			return err
		}
		param.Kind = KindRGB
	case KindBlackbody:
		flat := &Parameter{}
		if err := p.collectFloats(flat, bracketed); err != nil {
			return err
		}
		if len(flat.Floats) != 2 {
			return p.syntaxErrorAt(header, "blackbody parameter %q requires exactly 2 floats (temperature, scale); got %d", param.Name, len(flat.Floats))
		}
		param.RGBs = []types.Vec3{blackbodyToRGB(flat.Floats[0], flat.Floats[1])}
		param.Kind = KindRGB
	}

	if bracketed {
		if p.cur.Kind != Punctuation || p.cur.Text != "]" {
			return p.syntaxErrorAt(header, "parameter %q: expected closing ']'", param.Name)
		}
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
	}
	return nil
}

func (p *Parser) collectInts(param *Parameter, bracketed bool) error {
	count := 0
	for {
		if bracketed && (p.cur.Kind == Punctuation && p.cur.Text == "]") {
			break
		}
		if p.cur.Kind != Number {
			if !bracketed && count == 0 {
				return p.syntaxErrorAt(p.cur, "expected an integer value")
			}
			break
		}
		v, err := strconv.ParseInt(p.cur.Text, 10, 32)
		if err != nil {
			return p.syntaxErrorAt(p.cur, "could not parse integer %q: %s", p.cur.Text, err.Error())
		}
		param.Ints = append(param.Ints, int32(v))
		count++
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
		if !bracketed {
			break
		}
	}
	if bracketed && count == 0 {
		return p.syntaxErrorAt(p.cur, "array for parameter %q is empty", param.Name)
	}
	return nil
}

func (p *Parser) collectFloats(param *Parameter, bracketed bool) error {
	count := 0
	for {
		if bracketed && (p.cur.Kind == Punctuation && p.cur.Text == "]") {
			break
		}
		if p.cur.Kind != Number {
			if !bracketed && count == 0 {
				return p.syntaxErrorAt(p.cur, "expected a float value")
			}
			break
		}
		v, err := strconv.ParseFloat(p.cur.Text, 32)
		if err != nil {
			return p.syntaxErrorAt(p.cur, "could not parse float %q: %s", p.cur.Text, err.Error())
		}
		param.Floats = append(param.Floats, float32(v))
		count++
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
		if !bracketed {
			break
		}
	}
	if bracketed && count == 0 {
		return p.syntaxErrorAt(p.cur, "array for parameter %q is empty", param.Name)
	}
	return nil
}

func (p *Parser) collectBools(param *Parameter, bracketed bool) error {
	count := 0
	for {
		if bracketed && (p.cur.Kind == Punctuation && p.cur.Text == "]") {
			break
		}
		if p.cur.Kind != String {
			if !bracketed && count == 0 {
				return p.syntaxErrorAt(p.cur, "expected a bool literal (\"true\"/\"false\")")
			}
			break
		}
		switch p.cur.Text {
		case "true":
			param.Ints = append(param.Ints, 1)
		case "false":
			param.Ints = append(param.Ints, 0)
		default:
			return p.syntaxErrorAt(p.cur, "invalid bool literal %q; expected \"true\" or \"false\"", p.cur.Text)
		}
		count++
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
		if !bracketed {
			break
		}
	}
	if bracketed && count == 0 {
		return p.syntaxErrorAt(p.cur, "array for parameter %q is empty", param.Name)
	}
	return nil
}

func (p *Parser) collectStrings(param *Parameter, bracketed bool) error {
	count := 0
	for {
		if bracketed && (p.cur.Kind == Punctuation && p.cur.Text == "]") {
			break
		}
		if p.cur.Kind != String {
			if !bracketed && count == 0 {
				return p.syntaxErrorAt(p.cur, "expected a string value")
			}
			break
		}
		param.Strings = append(param.Strings, p.cur.Text)
		count++
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
		if !bracketed {
			break
		}
	}
	if bracketed && count == 0 {
		return p.syntaxErrorAt(p.cur, "array for parameter %q is empty", param.Name)
	}
	return nil
}

// collectSpectrum handles both inline wavelength/value float pairs and a
// filename reference to an external spectrum file (spec.md §4.3 step 4).
func (p *Parser) collectSpectrum(header Token, param *Parameter, bracketed bool) error {
	if !bracketed && p.cur.Kind == String {
		path := resolveSpectrumPath(p.cur.Text, p.currentFilePath())
		pairs, err := readSpectrumFile(path)
		if err != nil {
			return p.syntaxErrorAt(header, "could not read spectrum file %q: %s", path, err.Error())
		}
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
		param.RGBs = []types.Vec3{spectrumToRGB(pairs)}
		return nil
	}

	flat := &Parameter{}
	if err := p.collectFloats(flat, bracketed); err != nil {
		return err
	}
	if len(flat.Floats)%2 != 0 {
		return p.syntaxErrorAt(header, "inline spectrum samples for %q must come in (wavelength, value) pairs", param.Name)
	}
	pairs := make([][2]float32, 0, len(flat.Floats)/2)
	for i := 0; i < len(flat.Floats); i += 2 {
		pairs = append(pairs, [2]float32{flat.Floats[i], flat.Floats[i+1]})
	}
	param.RGBs = []types.Vec3{spectrumToRGB(pairs)}
	return nil
}

func resolveSpectrumPath(name, currentFile string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if currentFile == "" {
		return name
	}
	return filepath.Join(filepath.Dir(currentFile), name)
}

func readSpectrumFile(path string) ([][2]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []float32
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid sample %q: %s", scanner.Text(), err.Error())
		}
		values = append(values, float32(v))
	}
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("spectrum file contains an odd number of values")
	}
	pairs := make([][2]float32, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		pairs = append(pairs, [2]float32{values[i], values[i+1]})
	}
	return pairs, nil
}

// spectrumToRGB and blackbodyToRGB are pure color-science conversions. Per
// spec.md §1 these are consumed as fixed-input pure functions supplied by an
// external collaborator; this module only needs a stand-in with the right
// signature, so a perceptually-reasonable approximation is used rather than
// a full CIE pipeline.
func spectrumToRGB(samples [][2]float32) types.Vec3 {
	if len(samples) == 0 {
		return types.Vec3{}
	}
	var sum float32
	for _, s := range samples {
		sum += s[1]
	}
	avg := sum / float32(len(samples))
	return types.Vec3{avg, avg, avg}
}

func blackbodyToRGB(temperatureKelvin, scale float32) types.Vec3 {
	// Rough Planckian-locus approximation: warmer (lower K) skews red,
	// cooler (higher K) skews blue, normalized around 6500K "white".
	t := temperatureKelvin / 6500.0
	r := clamp01(1.5 - 0.5*t)
	g := clamp01(1.1 - 0.1*absf(t-1))
	b := clamp01(0.5 + 0.5*t)
	return types.Vec3{r * scale, g * scale, b * scale}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
