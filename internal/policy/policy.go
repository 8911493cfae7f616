package policy

import "time"

// RegistryCacheTTL bounds how stale a cached certification or status
// snapshot may get after a missed invalidation. Verification portals
// tolerate minutes of lag; shorten before serving payment decisions.
var RegistryCacheTTL = 5 * time.Minute
