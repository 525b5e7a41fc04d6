// Package service holds the route configuration validator.
//
// DetectConflicts computes the effective (method, full path) key of every
// declared route and reports repeats in declaration order.
// ValidationService combines schema construction with conflict detection
// and applies the strict or lenient duplicate policy.
//
// # Example Usage
//
//	svc := service.NewValidationService()
//
//	outcome, err := svc.ValidateFile("zyro.yaml", true)
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//
//	for _, w := range outcome.Warnings {
//	    fmt.Println(w)
//	}
package service
