// Package resilience provides reliability and fault tolerance patterns
// for outbound metric delivery. It includes circuit breakers and retry
// logic so a flapping push gateway cannot stall or overload the
// instrumented process.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.PushgatewayConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return nil, pushOnce()
//	})
//
//	retryConfig := retry.PushgatewayConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return pushOnce()
//	})
package resilience
