package jsonutils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNodeNotExist = errors.New("Inner node doesn't exist")

const (
	slashDelimiter = "/"
	dotDelimiter   = "."
)

//JSONPath is a struct for extracting and setting value by JSON path
//both slash (/key1/key2) and dot (key1.0.key2) notations are supported
//numeric parts address elements of []interface{} nodes
type JSONPath struct {
	//[key1, key2, key3]
	parts     []string
	delimiter string
}

//NewJSONPath returns JSONPath from slash notation (/key1/key2)
func NewJSONPath(path string) *JSONPath {
	return newPath(formatPrefixSuffix(path, slashDelimiter), slashDelimiter)
}

//NewDotPath returns JSONPath from dot notation (key1.key2.0)
func NewDotPath(path string) *JSONPath {
	return newPath(formatPrefixSuffix(path, dotDelimiter), dotDelimiter)
}

func newPath(formatted, delimiter string) *JSONPath {
	parts := strings.Split(strings.TrimSpace(formatted), delimiter)
	if len(parts) == 1 && parts[0] == "" {
		//empty json path
		parts = []string{}
	}
	return &JSONPath{parts: parts, delimiter: delimiter}
}

//IsEmpty returns true if path is empty
func (jp *JSONPath) IsEmpty() bool {
	return len(jp.parts) == 0
}

//Parts returns path keys
func (jp *JSONPath) Parts() []string {
	return jp.parts
}

//Get returns value of json path
func (jp *JSONPath) Get(obj map[string]interface{}) (interface{}, bool) {
	return jp.getAndRemove(obj, false)
}

//GetAndRemove returns value of json path and remove it from origin json
func (jp *JSONPath) GetAndRemove(obj map[string]interface{}) (interface{}, bool) {
	return jp.getAndRemove(obj, true)
}

func (jp *JSONPath) getAndRemove(obj map[string]interface{}, remove bool) (interface{}, bool) {
	if obj == nil || jp.IsEmpty() {
		return nil, false
	}

	var node interface{} = obj
	//dive into obj and return last key
	for i, key := range jp.parts {
		last := i == len(jp.parts)-1
		switch typed := node.(type) {
		case map[string]interface{}:
			value, ok := typed[key]
			//source node doesn't exist
			if !ok {
				return nil, false
			}
			if last {
				if remove {
					delete(typed, key)
				}
				return value, true
			}
			node = value
		case []interface{}:
			idx, ok := index(key, len(typed))
			if !ok {
				return nil, false
			}
			if last {
				value := typed[idx]
				if remove {
					typed[idx] = nil
				}
				return value, true
			}
			node = typed[idx]
		default:
			return nil, false
		}
	}

	return nil, false
}

//Set puts value to json path with creating inner objects
//inner nodes are created as []interface{} when the next key is an index
//returns err if value wasn't set
func (jp *JSONPath) Set(obj map[string]interface{}, value interface{}) error {
	if obj == nil || jp.IsEmpty() {
		return nil
	}

	_, err := jp.set(obj, 0, value)
	return err
}

//set puts value into node starting from parts[i] and returns the node (slices may be reallocated)
func (jp *JSONPath) set(node interface{}, i int, value interface{}) (interface{}, error) {
	key := jp.parts[i]
	last := i == len(jp.parts)-1

	switch typed := node.(type) {
	case map[string]interface{}:
		if last {
			typed[key] = value
			return typed, nil
		}
		child, ok := typed[key]
		if !ok || child == nil {
			child = jp.newNode(i + 1)
		}
		updated, err := jp.set(child, i+1, value)
		if err != nil {
			return nil, err
		}
		typed[key] = updated
		return typed, nil
	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx > len(typed) {
			return nil, fmt.Errorf("Value %v wasn't set into %s: %s isn't a valid index", value, jp.String(), key)
		}
		if idx == len(typed) {
			typed = append(typed, nil)
		}
		if last {
			typed[idx] = value
			return typed, nil
		}
		child := typed[idx]
		if child == nil {
			child = jp.newNode(i + 1)
		}
		updated, err := jp.set(child, i+1, value)
		if err != nil {
			return nil, err
		}
		typed[idx] = updated
		return typed, nil
	default:
		//node isn't object node
		return nil, fmt.Errorf("Value %v wasn't set into %s: %s node isn't an object", value, jp.String(), jp.parts[i-1])
	}
}

func (jp *JSONPath) newNode(i int) interface{} {
	if _, err := strconv.Atoi(jp.parts[i]); err == nil {
		return []interface{}{}
	}
	return map[string]interface{}{}
}

//String returns string representation of JSON path in its own notation
func (jp *JSONPath) String() string {
	if jp.delimiter == slashDelimiter {
		return slashDelimiter + strings.Join(jp.parts, slashDelimiter)
	}
	return strings.Join(jp.parts, jp.delimiter)
}

//FieldName returns string representation of flat field (key1_key2)
func (jp *JSONPath) FieldName() string {
	return strings.Join(jp.parts, "_")
}

func index(key string, length int) (int, bool) {
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

func formatPrefixSuffix(key, delimiter string) string {
	key = strings.TrimPrefix(key, delimiter)
	return strings.TrimSuffix(key, delimiter)
}
