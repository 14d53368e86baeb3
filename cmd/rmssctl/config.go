package main

import (
	"encoding/json"
	"fmt"
	"os"

	rmssapi "rmss/pkg/rmss"
)

func loadRunRequestFromConfig(path string) (rmssapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rmssapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return rmssapi.RunRequest{}, err
	}

	var req rmssapi.RunRequest
	if v, ok := asString(raw["input_path"]); ok {
		req.InputPath = v
	}
	if v, ok := asString(raw["target_path"]); ok {
		req.TargetPath = v
	}
	if v, ok := asString(raw["input_sequence"]); ok {
		req.InputSequence = v
	}
	if v, ok := asString(raw["target_sequence"]); ok {
		req.TargetSequence = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asFloat64(raw["sub_ratio"]); ok {
		req.SubRatio = v
	}
	if v, ok := asFloat64(raw["indel_ratio"]); ok {
		req.IndelRatio = v
	}
	if v, ok := asFloat64(raw["tran_ratio"]); ok {
		req.TranRatio = v
	}
	if v, ok := asFloat64(raw["transv_ratio"]); ok {
		req.TransvRatio = v
	}
	if v, ok := asInt(raw["cycles"]); ok {
		req.Cycles = v
	}
	if v, ok := asInt(raw["replications"]); ok {
		req.Replications = v
	}
	if v, ok := asInt(raw["top_k"]); ok {
		req.TopK = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (rmssapi.RunRequest, error) {
	if configPath == "" {
		return rmssapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return rmssapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *rmssapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "input":
			req.InputPath = v.(string)
		case "target":
			req.TargetPath = v.(string)
		case "input-seq":
			req.InputSequence = v.(string)
		case "target-seq":
			req.TargetSequence = v.(string)
		case "mutation-rate":
			req.MutationRate = v.(float64)
		case "sub-ratio":
			req.SubRatio = v.(float64)
		case "indel-ratio":
			req.IndelRatio = v.(float64)
		case "tran-ratio":
			req.TranRatio = v.(float64)
		case "transv-ratio":
			req.TransvRatio = v.(float64)
		case "cycles":
			req.Cycles = v.(int)
		case "replications":
			req.Replications = v.(int)
		case "top-k":
			req.TopK = v.(int)
		case "workers":
			req.Workers = v.(int)
		case "seed":
			req.Seed = v.(int64)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
