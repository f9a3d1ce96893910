package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	partyRepo "tailorlink/database/repository/party"
	"tailorlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// AuthCachePrefix namespaces token-hash entries in the auth cache.
const AuthCachePrefix = "auth:"

// JWTAuthMiddleware authenticates a party by bearer token. The token only
// identifies the caller; role-per-offer authorization happens inside the
// negotiation engine against the record being acted on.
func JWTAuthMiddleware(parties partyRepo.PartyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		partyID, role, err := utils.ExtractPartyFromToken(tokenString)
		if err != nil || partyID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := AuthCachePrefix + partyID

		// Token hashes are cached; a miss falls through to the party
		// directory so a cold cache never locks everyone out.
		authCache := utils.GetAuthCacheClient()
		cachedHash, err := authCache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			if cachedHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch"})
				return
			}
			_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
		case err == redis.Nil:
			if _, lookupErr := parties.GetByID(ctx, partyID); lookupErr != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
				return
			}
			_ = authCache.Set(ctx, cacheKey, computedHash, time.Hour).Err()
		default:
			log.Printf("WARNING: error retrieving auth cache key: %v. Falling back to directory lookup.", err)
			if _, lookupErr := parties.GetByID(ctx, partyID); lookupErr != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
				return
			}
		}

		c.Set("partyID", partyID)
		c.Set("partyRole", role)
		c.Next()
	}
}
