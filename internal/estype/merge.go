package estype

// Compatible reports whether two semantic types can describe the same field
// path across different indices. Scalars must match exactly. Structs are
// compatible when every overlapping child is recursively compatible -
// children present on only one side widen the merged struct and never
// conflict. Lists follow their element types recursively.
func Compatible(a, b Type) bool {
	switch at := a.(type) {
	case Scalar:
		bt, ok := b.(Scalar)
		return ok && at.Kind == bt.Kind
	case Struct:
		bt, ok := b.(Struct)
		if !ok {
			return false
		}
		for _, f := range at.Fields {
			if other, found := bt.Find(f.Name); found {
				if !Compatible(f.Type, other.Type) {
					return false
				}
			}
		}
		return true
	case List:
		bt, ok := b.(List)
		return ok && Compatible(at.Elem, bt.Elem)
	default:
		return false
	}
}

// Conflict locates the first incompatible sub-path between two types.
// Returns the relative dotted path ("" for the types themselves) and the
// two conflicting sub-types. found is false when the types are compatible.
func Conflict(a, b Type) (path string, ta, tb Type, found bool) {
	switch at := a.(type) {
	case Scalar:
		if bt, ok := b.(Scalar); ok && at.Kind == bt.Kind {
			return "", nil, nil, false
		}
		return "", a, b, true
	case Struct:
		bt, ok := b.(Struct)
		if !ok {
			return "", a, b, true
		}
		for _, f := range at.Fields {
			other, present := bt.Find(f.Name)
			if !present {
				continue
			}
			sub, sa, sb, bad := Conflict(f.Type, other.Type)
			if !bad {
				continue
			}
			if sub == "" {
				return f.Name, sa, sb, true
			}
			return f.Name + "." + sub, sa, sb, true
		}
		return "", nil, nil, false
	case List:
		bt, ok := b.(List)
		if !ok {
			return "", a, b, true
		}
		return Conflict(at.Elem, bt.Elem)
	default:
		return "", a, b, true
	}
}

// Merge unions two compatible types. For structs the result keeps a's child
// order, appends b-only children in b's order, and recursively merges
// overlapping children. Callers must check Compatible first; Merge of
// incompatible types returns a unchanged.
func Merge(a, b Type) Type {
	switch at := a.(type) {
	case Struct:
		bt, ok := b.(Struct)
		if !ok {
			return a
		}
		merged := make([]Field, 0, len(at.Fields))
		for _, f := range at.Fields {
			if other, found := bt.Find(f.Name); found {
				merged = append(merged, Field{Name: f.Name, Type: Merge(f.Type, other.Type)})
			} else {
				merged = append(merged, f)
			}
		}
		for _, f := range bt.Fields {
			if _, found := at.Find(f.Name); !found {
				merged = append(merged, f)
			}
		}
		return Struct{Fields: merged}
	case List:
		bt, ok := b.(List)
		if !ok {
			return a
		}
		return List{Elem: Merge(at.Elem, bt.Elem)}
	default:
		return a
	}
}
