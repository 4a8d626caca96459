package jsonutils

//CopyMap returns copy of input map with all sub objects and arrays
func CopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	cp := make(map[string]interface{}, len(m))
	for k, v := range m {
		cp[k] = CopyValue(v)
	}

	return cp
}

//CopyValue returns deep copy of maps and arrays, other values as is
func CopyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return CopyMap(typed)
	case []interface{}:
		cp := make([]interface{}, len(typed))
		for i, elem := range typed {
			cp[i] = CopyValue(elem)
		}
		return cp
	default:
		return v
	}
}

//Merge puts all keys from the right map into the left map with deep overwriting
//returns merged map result
func Merge(left map[string]interface{}, right map[string]interface{}) map[string]interface{} {
	if right == nil {
		return left
	}
	if left == nil {
		return right
	}

	for rk, rv := range right {
		rvObj, ok := rv.(map[string]interface{})
		if !ok {
			left[rk] = rv
			continue
		}

		if lvObj, ok := left[rk].(map[string]interface{}); ok {
			left[rk] = Merge(lvObj, rvObj)
		} else {
			left[rk] = rv
		}
	}

	return left
}

//Walk calls f for every object node of the document (including obj itself)
func Walk(obj interface{}, f func(node map[string]interface{})) {
	switch typed := obj.(type) {
	case map[string]interface{}:
		f(typed)
		for _, v := range typed {
			Walk(v, f)
		}
	case []interface{}:
		for _, v := range typed {
			Walk(v, f)
		}
	}
}
