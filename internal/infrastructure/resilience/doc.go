/*
Package resilience guards calls to remote services with a circuit breaker.

The docs store fetches documentation over HTTP; when that endpoint keeps
failing the breaker opens and Fetch fails fast with ErrOpen until the
cooldown passes:

	Closed --[Threshold failures]--> Open --[Cooldown]--> Half-Open
	Half-Open --[Probes successes]--> Closed
	Half-Open --[failure]--> Open

	breaker := resilience.New("docs", resilience.Settings{
		Threshold: 3,
		Cooldown:  time.Minute,
	})
	err := breaker.Execute(ctx, func(ctx context.Context) error {
		return fetch(ctx)
	})
*/
package resilience
