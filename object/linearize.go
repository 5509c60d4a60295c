package object

// linearize computes the member lookup order for a type: the type itself,
// then its declared bases depth-first in specification order, with repeated
// ancestors kept at their first appearance only. A type that directly or
// transitively names itself as a base is a configuration error, detected
// here rather than looping forever.
func linearize(t *Type) ([]*Type, error) {
	var mro []*Type
	seen := make(map[*Type]bool)
	onPath := make(map[*Type]bool)

	var walk func(a *Type) error
	walk = func(a *Type) error {
		if onPath[a] {
			return configErrorf(t.name, "cyclic base types through '%s'", a.name)
		}
		if seen[a] {
			return nil
		}
		seen[a] = true
		onPath[a] = true
		mro = append(mro, a)
		for _, b := range a.bases {
			if err := walk(b); err != nil {
				return err
			}
		}
		onPath[a] = false
		return nil
	}

	if err := walk(t); err != nil {
		return nil, err
	}
	return mro, nil
}
