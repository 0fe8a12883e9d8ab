// Package manifest declares registrations in YAML and applies them to a
// di.Registry.
//
//	name: shop
//	registrations:
//	  - name: Logger
//	    factory: logger
//	    singleton: true
//	  - name: Service
//	    factory: service
//	    dependencies: [Logger]
//	  - name: Config
//	    instance: {level: debug}
//
// Factory keys are looked up in a Catalog supplied by the caller.
package manifest
