package godto

// Package godto provides:
//
// - Declarative DTO schemas: a field descriptor per key (type, mutability, validator, coercion)
// - Parsing of JSON text, YAML text, or decoded mappings into validated Instances
// - Nested DTOs with each nested schema applying its own partial/strict policy
// - A write guard on Instances that keeps immutable fields frozen and re-validates mutable ones
// - A stable error model via Issues (JSON Pointer, code, message) with typed causes
//
// Design policy:
// - Keep only public APIs in the root package; put token handling under internal/.
// - Place the declarative DSL and struct binding under dsl/, reusable coercers under coerce/,
//   reusable predicates under validate/.
// - Parsing is fail-fast: the first violation in field-declaration order is returned.
//
// Typical usage:
//
//	car := dsl.Object("Car").
//	    Field("year", dsl.Int().Validate(validate.Gt[int64](1980))).
//	    Field("license", dsl.String()).
//	    MustBuild()
//	inst, err := godto.FromJSON(ctx, car, data)
//	year, _ := inst.Int("year")
//
//	var verr *godto.ValidationError
//	if errors.As(err, &verr) { ... }
//
