// Package dsl provides the declarative surface for godto schemas.
//
// Overview
//   - Builder API: declare a DTO with Object(name).Field(key, spec)...MustBuild().
//   - Field specs: String()/Int()/Float()/Bool()/Time(), Nested(schema), Ref(func), List(elem),
//     Optional(spec); chain Validate/Coerce/CoerceTo/Mutable.
//   - Struct tags: StructOf[T]() derives a schema from a Go struct (dto:"key,mutable",
//     json tag fallback, "-" skips). Pointers and github.com/aarondl/null/v8 types are optional.
//   - Typed binding: Bind[T](schema) or StructOf[T]().MustBind() moves values between
//     *godto.Instance and T.
//
// Quickstart
//
//	car := dsl.Object("Car").
//	    Field("year", dsl.Int().Validate(validate.Gt[int64](1980))).
//	    Field("license", dsl.String().Coerce(coerce.TrimSpace)).
//	    MustBuild()
//
//	type Car struct {
//	    Year    int    `dto:"year"`
//	    License string `dto:"license,mutable"`
//	}
//	cars := dsl.StructOf[Car]().Validate("year", validate.Untyped(validate.Gt[int64](1980))).MustBind()
//	c, err := cars.FromJSON(ctx, data)
//
// Design guidelines
//   - Declarations fail at build time with *godto.SchemaError.
//   - Field order is declaration order (struct field order for StructOf); parsing is fail-fast in
//     that order.
//   - Derived schemas of plain nested structs are cached per Go type and shared between builds.
package dsl
