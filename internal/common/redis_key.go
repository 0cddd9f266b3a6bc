package common

func RedisKeyActiveRewardPool() string {
	return "rewardpool:active"
}
