package config

import (
	"bufio"
	"github.com/ghodss/yaml"
	"io"
	"io/ioutil"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// BufferSettings configures the relay daemon's buffer and pool
// behavior: the growable/segmented buffer defaults spec.md leaves to
// the caller, plus the relay-specific pool sizing the domain stack adds
// on top.
type BufferSettings struct {
	Port              string `cfg:"port" yaml:"port"`
	FlatMaxSize       int    `cfg:"flatmaxsize" yaml:"flatMaxSize"`
	MultiMaxSize      int    `cfg:"multimaxsize" yaml:"multiMaxSize"`
	MultiNodeSize     int    `cfg:"multinodesize" yaml:"multiNodeSize"`
	MultiGrowthFactor int    `cfg:"multigrowthfactor" yaml:"multiGrowthFactor"`
	RelayPoolCapacity int    `cfg:"relaypoolcapacity" yaml:"relayPoolCapacity"`
	RelayWorkerCount  int    `cfg:"relayworkercount" yaml:"relayWorkerCount"`
	DebugMode         bool   `yaml:"debugMode"`
}

var Settings *BufferSettings

func init() {
	Settings = &BufferSettings{
		Port:              "7380",
		FlatMaxSize:       1 << 20,  // 1 MiB
		MultiMaxSize:      16 << 20, // 16 MiB
		MultiNodeSize:     512,
		MultiGrowthFactor: 2,
		RelayPoolCapacity: 256,
		RelayWorkerCount:  4,
		DebugMode:         true,
	}
}

// LoadLineConfig parses the legacy "key value" line format: one setting
// per line, blank/`#`-prefixed lines ignored. It is additive — fields
// the file doesn't mention keep their current value, so it is meant to
// run before LoadConfigs, not instead of it.
func LoadLineConfig(reader io.Reader) *BufferSettings {
	cfgMap := make(map[string]string)
	scanner := bufio.NewScanner(reader)
	// scan config file
	for scanner.Scan() {
		line := scanner.Text()
		// skip comments
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		// get gap between key and value
		idx := strings.IndexAny(line, " ")
		if idx > 0 && idx < len(line)-1 {
			key := line[0:idx]
			value := strings.Trim(line[idx+1:], " ")
			// put key value into temp map
			cfgMap[strings.ToLower(key)] = value
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalln(err)
	}

	t := reflect.TypeOf(Settings)
	v := reflect.ValueOf(Settings)
	n := t.Elem().NumField()
	for i := 0; i < n; i++ {
		// use reflection to get fields
		field := t.Elem().Field(i)
		fieldValue := v.Elem().Field(i)
		key, ok := field.Tag.Lookup("cfg")
		if !ok {
			key = field.Name
		}
		value, ok := cfgMap[strings.ToLower(key)]
		if !ok {
			continue
		}
		switch field.Type.Kind() {
		case reflect.String:
			fieldValue.SetString(value)
		case reflect.Int:
			num, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				fieldValue.SetInt(num)
			}
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(value)
			if err == nil {
				fieldValue.SetBool(boolVal)
			}
		}
	}
	return Settings
}

func parseYAML(file *os.File) *BufferSettings {
	bytes, err := ioutil.ReadAll(file)
	if err != nil {
		panic(err)
	}
	if err := yaml.Unmarshal(bytes, Settings); err != nil {
		panic(err)
	}
	return Settings
}

// LoadConfigs loads settings from a YAML file, overriding whatever
// LoadLineConfig (or the package defaults) already populated.
func LoadConfigs(configFilePath string) {
	file, err := os.Open(configFilePath)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	Settings = parseYAML(file)
}
