package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// DefaultEnvPrefix follows the airflow convention for variables set through the environment.
const DefaultEnvPrefix = "AIRFLOW_VAR_"

// ErrVariableNotFound is returned when a key is unknown to the provider.
var ErrVariableNotFound = errors.New("variable not found")

// Variables is a key value secret provider, like API keys and connection strings.
type Variables interface {
	Get(key string) (string, error)
}

// EnvVariables reads variables from the process environment.
// Key vantage_api_key is looked up as AIRFLOW_VAR_VANTAGE_API_KEY.
type EnvVariables struct {
	Prefix string
}

// Get returns the environment value for the key.
func (e EnvVariables) Get(key string) (string, error) {
	name := e.Prefix + strings.ToUpper(key)
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", errors.Wrapf(ErrVariableNotFound, "env %s", name)
	}
	return v, nil
}

// FileVariables holds variables loaded from a flat JSON or YAML map.
type FileVariables map[string]string

// LoadFileVariables reads a variables file.
func LoadFileVariables(path string) (FileVariables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read variables")
	}
	vars := FileVariables{}
	if err = decode(path, data, &vars); err != nil {
		return nil, errors.Wrap(err, "parse variables")
	}
	return vars, nil
}

// Get returns the file value for the key.
func (f FileVariables) Get(key string) (string, error) {
	v, ok := f[key]
	if !ok || v == "" {
		return "", errors.Wrapf(ErrVariableNotFound, "key %s", key)
	}
	return v, nil
}

// ChainVariables asks each provider in order and returns the first hit.
type ChainVariables []Variables

// Get returns the first value found for the key.
func (c ChainVariables) Get(key string) (string, error) {
	for _, vars := range c {
		v, err := vars.Get(key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrVariableNotFound) {
			return "", err
		}
	}
	return "", errors.Wrapf(ErrVariableNotFound, "key %s", key)
}
