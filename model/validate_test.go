package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plasmakit/stdnames/grammar"
	"github.com/plasmakit/stdnames/operator"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	vocab, err := grammar.NewVocabulary(map[grammar.SegmentKind][]string{
		grammar.SegmentComponent:     {"radial", "toroidal", "vertical"},
		grammar.SegmentSubject:       {"electron", "ion"},
		grammar.SegmentGeometricBase: {"outline", "position_vector"},
		grammar.SegmentProcess:       {"conduction", "radiation"},
	})
	require.NoError(t, err)
	return NewValidator(grammar.NewParser(vocab), operator.DefaultRegistry(), operator.DefaultReductions())
}

// catalogOf builds a lookup over a fixed entry set.
func catalogOf(entries ...*Entry) LookupFunc {
	byName := make(map[string]Summary, len(entries))
	for _, e := range entries {
		byName[e.Name] = Summarize(e)
	}
	return func(name string) (Summary, bool) {
		s, ok := byName[name]
		return s, ok
	}
}

func magneticFieldFamily() []*Entry {
	vector := &Entry{
		Name:  "magnetic_field",
		Kind:  KindVector,
		Unit:  "T",
		Frame: "cylindrical_r_tor_z",
		Components: map[string]string{
			"radial":   "radial_component_of_magnetic_field",
			"toroidal": "toroidal_component_of_magnetic_field",
			"vertical": "vertical_component_of_magnetic_field",
		},
	}
	family := []*Entry{vector}
	for _, axis := range []string{"radial", "toroidal", "vertical"} {
		family = append(family, &Entry{
			Name:         axis + "_component_of_magnetic_field",
			Kind:         KindScalar,
			Unit:         "T",
			ParentVector: "magnetic_field",
		})
	}
	return family
}

func TestValidateEntry_VectorFamily(t *testing.T) {
	v := testValidator(t)
	family := magneticFieldFamily()
	lookup := catalogOf(family...)

	for _, e := range family {
		assert.Empty(t, v.ValidateEntry(e, lookup), "entry %q", e.Name)
	}
}

func TestValidateEntry_VectorMissingComponent(t *testing.T) {
	v := testValidator(t)
	family := magneticFieldFamily()
	// Drop the vertical component record but keep the vector's reference.
	lookup := catalogOf(family[0], family[1], family[2])

	errs := v.ValidateEntry(family[0], lookup)
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, DanglingReference, serr.Kind)
	assert.Equal(t, "components.vertical", serr.Field)
	assert.Equal(t, "vertical_component_of_magnetic_field", serr.Ref)
}

func TestValidateEntry_VectorTooFewComponents(t *testing.T) {
	v := testValidator(t)
	vector := &Entry{
		Name:       "magnetic_field",
		Kind:       KindVector,
		Unit:       "T",
		Frame:      "cylindrical_r_tor_z",
		Components: map[string]string{"radial": "radial_component_of_magnetic_field"},
	}
	component := &Entry{Name: "radial_component_of_magnetic_field", Kind: KindScalar, Unit: "T"}

	errs := v.ValidateEntry(vector, catalogOf(vector, component))
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, MissingComponents, serr.Kind)
}

func TestValidateEntry_ComponentNameShape(t *testing.T) {
	v := testValidator(t)
	vector := &Entry{
		Name:  "magnetic_field",
		Kind:  KindVector,
		Unit:  "T",
		Frame: "cylindrical_r_tor_z",
		Components: map[string]string{
			"radial":   "magnetic_field_radial", // wrong shape
			"toroidal": "toroidal_component_of_magnetic_field",
		},
	}
	toroidal := &Entry{Name: "toroidal_component_of_magnetic_field", Kind: KindScalar, Unit: "T"}

	errs := v.ValidateEntry(vector, catalogOf(vector, toroidal))
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, ComponentNameMismatch, serr.Kind)
	assert.Equal(t, "components.radial", serr.Field)
}

func TestValidateEntry_OperatorProvenance(t *testing.T) {
	v := testValidator(t)
	base := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV"}
	derived := &Entry{
		Name: "gradient_of_electron_temperature",
		Kind: KindVector,
		Unit: "eV.m^-1",
		Provenance: &OperatorProvenance{
			Operators: []string{"gradient"},
			Base:      "electron_temperature",
		},
	}
	// A vector result normally needs components, but here only the
	// provenance rules are under test.
	derived.Frame = "cylindrical_r_tor_z"
	derived.Components = map[string]string{
		"radial":   "radial_component_of_gradient_of_electron_temperature",
		"toroidal": "toroidal_component_of_gradient_of_electron_temperature",
	}
	radial := &Entry{Name: "radial_component_of_gradient_of_electron_temperature", Kind: KindScalar}
	toroidal := &Entry{Name: "toroidal_component_of_gradient_of_electron_temperature", Kind: KindScalar}

	errs := v.ValidateEntry(derived, catalogOf(base, derived, radial, toroidal))
	assert.Empty(t, errs)
}

func TestValidateEntry_OperatorRankViolation(t *testing.T) {
	v := testValidator(t)
	family := magneticFieldFamily()
	bad := &Entry{
		Name: "gradient_of_magnetic_field",
		Kind: KindVector,
		Provenance: &OperatorProvenance{
			Operators: []string{"gradient"},
			Base:      "magnetic_field",
		},
	}

	errs := v.ValidateEntry(bad, catalogOf(append(family, bad)...))
	var rerr *operator.RankError
	found := false
	for _, err := range errs {
		if assertErrAs(err, &rerr) && rerr.Kind == operator.InvalidOperatorInput {
			found = true
		}
	}
	assert.True(t, found, "expected an invalid operator input error, got %v", errs)
}

func TestValidateEntry_CurlNeedsThreeAxes(t *testing.T) {
	v := testValidator(t)
	vector := &Entry{
		Name:  "plasma_velocity",
		Kind:  KindVector,
		Frame: "poloidal_plane",
		Components: map[string]string{
			"radial":   "radial_component_of_plasma_velocity",
			"vertical": "vertical_component_of_plasma_velocity",
		},
	}
	curl := &Entry{
		Name: "curl_of_plasma_velocity",
		Kind: KindVector,
		Provenance: &OperatorProvenance{
			Operators: []string{"curl"},
			Base:      "plasma_velocity",
		},
		Frame: "poloidal_plane",
		Components: map[string]string{
			"radial":   "radial_component_of_curl_of_plasma_velocity",
			"vertical": "vertical_component_of_curl_of_plasma_velocity",
		},
	}
	catalog := catalogOf(vector, curl,
		&Entry{Name: "radial_component_of_plasma_velocity", Kind: KindScalar},
		&Entry{Name: "vertical_component_of_plasma_velocity", Kind: KindScalar},
		&Entry{Name: "radial_component_of_curl_of_plasma_velocity", Kind: KindScalar},
		&Entry{Name: "vertical_component_of_curl_of_plasma_velocity", Kind: KindScalar},
	)

	errs := v.ValidateEntry(curl, catalog)
	var rerr *operator.RankError
	found := false
	for _, err := range errs {
		if assertErrAs(err, &rerr) && rerr.Kind == operator.InsufficientFrameRank {
			found = true
		}
	}
	assert.True(t, found, "expected an insufficient frame rank error, got %v", errs)
}

func TestValidateEntry_OperatorNameMismatch(t *testing.T) {
	v := testValidator(t)
	base := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV"}
	bad := &Entry{
		Name: "electron_temperature_gradient",
		Kind: KindVector,
		Provenance: &OperatorProvenance{
			Operators: []string{"gradient"},
			Base:      "electron_temperature",
		},
		Frame: "cylindrical_r_tor_z",
		Components: map[string]string{
			"radial":   "radial_component_of_electron_temperature_gradient",
			"toroidal": "toroidal_component_of_electron_temperature_gradient",
		},
	}
	catalog := catalogOf(base, bad,
		&Entry{Name: "radial_component_of_electron_temperature_gradient", Kind: KindScalar},
		&Entry{Name: "toroidal_component_of_electron_temperature_gradient", Kind: KindScalar},
	)

	errs := v.ValidateEntry(bad, catalog)
	found := false
	for _, err := range errs {
		var serr *StructuralError
		if assertErrAs(err, &serr) && serr.Kind == ProvenanceMismatch {
			found = true
		}
	}
	assert.True(t, found, "expected a provenance mismatch, got %v", errs)
}

func TestValidateEntry_MagnitudeDependencies(t *testing.T) {
	v := testValidator(t)
	family := magneticFieldFamily()

	complete := &Entry{
		Name: "magnitude_of_magnetic_field",
		Kind: KindScalar,
		Unit: "T",
		Provenance: &ReductionProvenance{
			Reduction: "magnitude",
			Base:      "magnetic_field",
			Dependencies: []string{
				"radial_component_of_magnetic_field",
				"toroidal_component_of_magnetic_field",
				"vertical_component_of_magnetic_field",
			},
		},
	}
	lookup := catalogOf(append(family, complete)...)
	assert.Empty(t, v.ValidateEntry(complete, lookup))

	incomplete := complete.Clone()
	incomplete.Provenance.(*ReductionProvenance).Dependencies = []string{
		"radial_component_of_magnetic_field",
		"toroidal_component_of_magnetic_field",
	}
	errs := v.ValidateEntry(incomplete, lookup)
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, IncompleteMagnitudeDependencies, serr.Kind)
}

func TestValidateEntry_MagnitudeNeedsVectorBase(t *testing.T) {
	v := testValidator(t)
	scalar := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV"}
	bad := &Entry{
		Name: "magnitude_of_electron_temperature",
		Kind: KindScalar,
		Provenance: &ReductionProvenance{
			Reduction: "magnitude",
			Base:      "electron_temperature",
		},
	}

	errs := v.ValidateEntry(bad, catalogOf(scalar, bad))
	found := false
	for _, err := range errs {
		var serr *StructuralError
		if assertErrAs(err, &serr) && serr.Kind == WrongReferenceKind {
			found = true
		}
	}
	assert.True(t, found, "expected a wrong reference kind error, got %v", errs)
}

func TestValidateEntry_ReductionDomain(t *testing.T) {
	v := testValidator(t)
	base := &Entry{Name: "electron_density", Kind: KindScalar, Unit: "m^-3"}
	avg := &Entry{
		Name: "time_average_of_electron_density",
		Kind: KindScalar,
		Unit: "m^-3",
		Provenance: &ReductionProvenance{
			Reduction: "mean",
			Domain:    "time",
			Base:      "electron_density",
		},
	}
	lookup := catalogOf(base, avg)
	assert.Empty(t, v.ValidateEntry(avg, lookup))

	wrong := avg.Clone()
	wrong.Provenance.(*ReductionProvenance).Domain = "volume"
	errs := v.ValidateEntry(wrong, lookup)
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, InvalidReductionDomain, serr.Kind)
}

func TestValidateEntry_Lifecycle(t *testing.T) {
	v := testValidator(t)
	successor := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV"}

	noSuccessor := &Entry{Name: "ion_temperature", Kind: KindScalar, Unit: "eV", Status: StatusDeprecated}
	errs := v.ValidateEntry(noSuccessor, catalogOf(successor, noSuccessor))
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, MissingSupersededBy, serr.Kind)

	dangling := &Entry{Name: "ion_temperature", Kind: KindScalar, Unit: "eV", Status: StatusSuperseded, SupersededBy: "nonexistent_name"}
	errs = v.ValidateEntry(dangling, catalogOf(successor, dangling))
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, DanglingReference, serr.Kind)
	assert.Equal(t, "superseded_by", serr.Field)

	ok := &Entry{Name: "ion_temperature", Kind: KindScalar, Unit: "eV", Status: StatusSuperseded, SupersededBy: "electron_temperature"}
	assert.Empty(t, v.ValidateEntry(ok, catalogOf(successor, ok)))
}

func TestValidateEntry_Tags(t *testing.T) {
	v := testValidator(t)
	v.PrimaryTags = map[string]struct{}{"equilibrium": {}, "transport": {}}
	v.SecondaryTags = map[string]struct{}{"experimental": {}}
	lookup := catalogOf()

	ok := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV", Tags: []string{"equilibrium", "experimental"}}
	assert.Empty(t, v.ValidateEntry(ok, lookup))

	secondaryFirst := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV", Tags: []string{"experimental"}}
	errs := v.ValidateEntry(secondaryFirst, lookup)
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, MalformedTagOrder, serr.Kind)

	twoPrimaries := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV", Tags: []string{"equilibrium", "transport"}}
	errs = v.ValidateEntry(twoPrimaries, lookup)
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, MalformedTagOrder, serr.Kind)

	unknown := &Entry{Name: "electron_temperature", Kind: KindScalar, Unit: "eV", Tags: []string{"equilibrium", "mystery"}}
	errs = v.ValidateEntry(unknown, lookup)
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, UnknownTag, serr.Kind)
}

func TestValidateEntry_ExpressionInputs(t *testing.T) {
	v := testValidator(t)
	pressure := &Entry{Name: "electron_pressure", Kind: KindScalar, Unit: "Pa"}
	beta := &Entry{
		Name:       "plasma_beta",
		Kind:       KindScalar,
		Provenance: &ExpressionProvenance{Expression: "p / p_mag", Inputs: []string{"electron_pressure", "missing_input"}},
	}

	errs := v.ValidateEntry(beta, catalogOf(pressure, beta))
	require.Len(t, errs, 1)
	var serr *StructuralError
	require.ErrorAs(t, errs[0], &serr)
	assert.Equal(t, DanglingReference, serr.Kind)
	assert.Equal(t, "missing_input", serr.Ref)
}

func TestValidateEntry_ReportsAllViolations(t *testing.T) {
	v := testValidator(t)
	bad := &Entry{
		Name:   "Electron_Temperature",
		Kind:   "tensor",
		Unit:   "m/s",
		Status: StatusDeprecated,
	}

	errs := v.ValidateEntry(bad, catalogOf())
	kinds := make(map[StructuralErrorKind]bool)
	for _, err := range errs {
		var serr *StructuralError
		if assertErrAs(err, &serr) {
			kinds[serr.Kind] = true
		}
	}
	assert.True(t, kinds[InvalidName])
	assert.True(t, kinds[InvalidField])
	assert.True(t, kinds[InvalidUnit])
	assert.True(t, kinds[MissingSupersededBy])
}

// assertErrAs is errors.As without failing the test, for scanning mixed
// error lists.
func assertErrAs(err error, target interface{}) bool {
	switch t := target.(type) {
	case **StructuralError:
		serr, ok := err.(*StructuralError)
		if ok {
			*t = serr
		}
		return ok
	case **operator.RankError:
		rerr, ok := err.(*operator.RankError)
		if ok {
			*t = rerr
		}
		return ok
	default:
		return false
	}
}
