package builtins

import "stable/object"

// Types collects the built-in type objects after registration.
type Types struct {
	Int   *object.Type
	Float *object.Type
	Str   *object.Type
	Bool  *object.Type
}

// Register builds the built-in types in the given factory: the adoptive
// 'int' over the small and big integer encodings, 'float', 'str', and
// 'bool' as a subtype of 'int'.
func Register(f *object.Factory) (*Types, error) {
	intType, err := f.FromSpec(object.NewTypeSpec("int").
		Primary(ClassInt64).
		Adopt(ClassBigInt).
		Member(intMembers()...))
	if err != nil {
		return nil, err
	}

	floatType, err := f.FromSpec(object.NewTypeSpec("float").
		Primary(ClassFloat64).
		Member(floatMembers()...))
	if err != nil {
		return nil, err
	}

	strType, err := f.FromSpec(object.NewTypeSpec("str").
		Primary(ClassString).
		Member(strMembers()...))
	if err != nil {
		return nil, err
	}

	boolType, err := f.FromSpec(object.NewTypeSpec("bool").
		Primary(ClassBool).
		Base(intType).
		Member(boolMembers()...))
	if err != nil {
		return nil, err
	}

	return &Types{Int: intType, Float: floatType, Str: strType, Bool: boolType}, nil
}
