// Package factory is a small generic registry that builds pluggable modules,
// such as metrics sinks, from configuration. A module is selected by its
// type string and receives its raw settings as a map, which factories decode
// into typed structs with Decode.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("nop", func(map[string]any) (metrics.MetricsSink, error) {
//	    return metrics.NopSink{}, nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "nop"})
package factory
